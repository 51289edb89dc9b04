package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/moyu-x/image-tidy/app"
	"github.com/moyu-x/image-tidy/config"
)

var (
	cfgFile string // 配置文件路径
	verbose bool   // 显示详细日志
	dryRun  bool   // 只预览不修改
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "image-tidy",
	Short: "修复图片文件名和扩展名，下载文章中的图片",
	Long: `image-tidy 是一个整理图片文件名的命令行工具。

主要功能:
- 清理文件名末尾多余的引号、逗号、括号和空格
- 根据文件头识别真实格式 (JPEG/PNG/GIF/WEBP/BMP) 并修正扩展名
- 改名冲突时自动追加序号，绝不覆盖已有文件
- 下载公众号等文章页面中的全部图片并按真实格式保存
- 记录每次改名到本地 SQLite 日志`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func logOptions(cfg *config.Config) app.LogOptions {
	return app.LogOptions{
		Verbose:  verbose,
		LogLevel: cfg.Logging.Level,
		LogFile:  cfg.Logging.File,
	}
}

func journalOptions(cfg *config.Config) app.JournalOptions {
	return app.JournalOptions{
		Enabled: cfg.Journal.Enabled,
		Path:    cfg.Journal.Path,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件 (默认查找 $HOME/.image-tidy/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "显示详细日志")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "只显示将要进行的修改，不修改任何文件")
}
