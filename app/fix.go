package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal/fileprocessor"
	"github.com/moyu-x/image-tidy/internal/logger"
	"github.com/moyu-x/image-tidy/tui"
)

// Mode 目录修复模式
type Mode int

const (
	ModeFix    Mode = iota // 清理末尾字符并修正扩展名
	ModeClean              // 只清理末尾字符
	ModeFixExt             // 只修正扩展名
)

func (m Mode) String() string {
	switch m {
	case ModeClean:
		return "clean"
	case ModeFixExt:
		return "fixext"
	default:
		return "fix"
	}
}

type FixOptions struct {
	Dir        string
	Mode       Mode
	DryRun     bool
	Extensions []string
	Log        LogOptions
	Journal    JournalOptions

	Fs  afero.Fs  // 为空时使用真实文件系统
	Out io.Writer // 为空时输出到 stdout
}

func RunFix(ctx context.Context, opts *FixOptions) (*fileprocessor.Stats, error) {
	if err := initLogger(opts.Log); err != nil {
		return nil, err
	}
	defer logger.Close()

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	lock, err := fileprocessor.LockDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	runID := newRunID()
	popts := fileprocessor.Options{
		Clean:         opts.Mode != ModeFixExt,
		FixExtensions: opts.Mode != ModeClean,
		DryRun:        opts.DryRun,
		Extensions:    opts.Extensions,
		RunID:         runID,
	}
	if db := openJournal(opts.Journal, opts.DryRun); db != nil {
		defer db.Close()
		popts.Journal = db
	}

	proc, err := fileprocessor.New(fs, opts.Dir, popts)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("dir", opts.Dir).
		Str("mode", opts.Mode.String()).
		Str("run_id", runID).
		Msg("开始处理")

	reporter := tui.NewReporter(out, opts.Log.Verbose)
	stats, err := proc.ProcessDir(ctx, reporter.Progress)
	if stats != nil {
		reporter.Summary(fmt.Sprintf("%s 完成", opts.Mode), stats, opts.DryRun)
	}
	if err != nil {
		return stats, fmt.Errorf("处理目录失败: %w", err)
	}
	return stats, nil
}
