package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/moyu-x/image-tidy/internal"
)

type Config struct {
	Logging struct {
		Level string
		File  string
	}
	Journal struct {
		Enabled bool
		Path    string
	}
	Scan struct {
		Extensions []string
	}
	Fetch struct {
		Delay     time.Duration
		Timeout   time.Duration
		UserAgent string `mapstructure:"user_agent"`
		Prefix    string
		MinSize   int64 `mapstructure:"min_size"`
		Verify    bool
	}
}

var cfg Config

// Load 读取配置文件、环境变量和默认值
// path 为空时按默认路径查找 config.yaml，找不到文件不算错误
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("$HOME/." + internal.AppName)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/" + internal.AppName)
	}

	v.SetEnvPrefix("IMAGE_TIDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", internal.DefaultJournalPath)
	v.SetDefault("scan.extensions", []string{})
	v.SetDefault("fetch.delay", internal.DefaultFetchDelay)
	v.SetDefault("fetch.timeout", internal.DefaultFetchTimeout)
	v.SetDefault("fetch.user_agent", internal.DefaultUserAgent)
	v.SetDefault("fetch.prefix", internal.DefaultFilePrefix)
	v.SetDefault("fetch.min_size", internal.DefaultMinSize)
	v.SetDefault("fetch.verify", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.Journal.Path = ExpandPath(c.Journal.Path)
	c.Logging.File = ExpandPath(c.Logging.File)

	cfg = c
	return &cfg, nil
}

func Get() *Config {
	return &cfg
}

// ExpandPath 展开开头的 ~
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
