package app

import (
	"github.com/google/uuid"

	"github.com/moyu-x/image-tidy/internal/database"
	"github.com/moyu-x/image-tidy/internal/logger"
)

// LogOptions 日志相关选项
type LogOptions struct {
	Verbose  bool
	LogLevel string
	LogFile  string
}

// JournalOptions 改名日志选项
type JournalOptions struct {
	Enabled bool
	Path    string
}

func initLogger(opts LogOptions) error {
	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	return logger.Init(level, opts.LogFile)
}

// openJournal 打开改名日志；未启用或预览模式时返回 nil
// 日志打不开不影响处理，只记录警告
func openJournal(opts JournalOptions, dryRun bool) *database.DB {
	if !opts.Enabled || dryRun || opts.Path == "" {
		return nil
	}
	db, err := database.New(opts.Path)
	if err != nil {
		logger.Warn().Err(err).Str("path", opts.Path).Msg("打开改名日志失败，本次不记录")
		return nil
	}
	return db
}

func newRunID() string {
	return uuid.New().String()
}
