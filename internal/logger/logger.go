package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger 全局日志实例
	Logger *zerolog.Logger

	logFile *os.File
)

// ParseLevel 解析日志级别，无法识别时返回 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init 初始化 zerolog 日志
// level: 日志级别 ("debug", "info", "warn", "error")
// file: 日志文件路径，为空时仅输出到控制台
func Init(level string, file string) error {
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	output := console

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		Close()
		logFile = f
		// 文件中保留 JSON 格式，便于后续检索
		output = zerolog.MultiLevelWriter(console, f)
	}

	l := zerolog.New(output).Level(ParseLevel(level)).With().Timestamp().Logger()
	Logger = &l
	return nil
}

// SetOutput 使用指定 writer 替换全局 logger，主要用于测试
func SetOutput(w io.Writer, level string) {
	l := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	Logger = &l
}

// Get 返回全局 logger 实例
// 如果 logger 未初始化，返回一个默认的 logger（输出到 /dev/null）
func Get() *zerolog.Logger {
	if Logger == nil {
		l := zerolog.New(io.Discard)
		Logger = &l
	}
	return Logger
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Debug 输出调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 输出信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 输出警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 输出错误日志
func Error() *zerolog.Event {
	return Get().Error()
}
