package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal/fetcher"
	"github.com/moyu-x/image-tidy/internal/fileprocessor"
	"github.com/moyu-x/image-tidy/internal/logger"
	"github.com/moyu-x/image-tidy/tui"
)

// ErrNoSource 既没有文章地址也没有离线页面
var ErrNoSource = errors.New("需要提供文章URL、--html 或 --clipboard")

type FetchOptions struct {
	URL       string
	HTMLFile  string
	Clipboard bool
	OutDir    string
	DryRun    bool

	UserAgent string
	Delay     time.Duration
	Timeout   time.Duration
	Prefix    string
	MinSize   int64
	Verify    bool

	Log     LogOptions
	Journal JournalOptions

	Fs  afero.Fs
	Out io.Writer
}

func RunFetch(ctx context.Context, opts *FetchOptions) (*fileprocessor.Stats, error) {
	if err := initLogger(opts.Log); err != nil {
		return nil, err
	}
	defer logger.Close()

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	// 预览模式下所有写入都落在内存层
	if opts.DryRun {
		fs = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(fs), afero.NewMemMapFs())
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	pageURL := opts.URL
	if pageURL == "" && opts.Clipboard {
		u, err := fetcher.ReadClipboardURL()
		if err != nil {
			return nil, err
		}
		pageURL = u
		logger.Info().Str("url", u).Msg("从剪贴板读取URL")
	}
	if pageURL == "" && opts.HTMLFile == "" {
		return nil, ErrNoSource
	}

	if err := fs.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	lock, err := fileprocessor.LockDir(opts.OutDir)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	f := fetcher.New(fetcher.Options{
		UserAgent: opts.UserAgent,
		Delay:     opts.Delay,
		Timeout:   opts.Timeout,
		Prefix:    opts.Prefix,
	})

	page, err := loadPage(ctx, fs, f, pageURL, opts.HTMLFile)
	if err != nil {
		if errors.Is(err, fetcher.ErrVerificationRequired) {
			saveDebugPage(fs, opts.OutDir, page)
		}
		return nil, err
	}

	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}
	urls := fetcher.ExtractImageURLs(page, base)
	if len(urls) == 0 {
		saveDebugPage(fs, opts.OutDir, page)
		return nil, fetcher.ErrNoImages
	}
	logger.Info().Int("count", len(urls)).Msg("找到图片URL")

	runID := newRunID()
	popts := fileprocessor.Options{
		DryRun:  opts.DryRun,
		MinSize: opts.MinSize,
		RunID:   runID,
	}
	if opts.Verify {
		popts.Verify = fetcher.VerifyImage
	}
	if db := openJournal(opts.Journal, opts.DryRun); db != nil {
		defer db.Close()
		popts.Journal = db
	}

	proc, err := fileprocessor.New(fs, opts.OutDir, popts)
	if err != nil {
		return nil, err
	}

	reporter := tui.NewReporter(out, opts.Log.Verbose)
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("downloaded", i).Msg("下载被中断")
			reporter.Summary("下载中断", &proc.Stats, opts.DryRun)
			return &proc.Stats, err
		}

		var o fileprocessor.Outcome
		body, name, err := f.Download(ctx, u, i+1)
		if err != nil {
			o = proc.Reject(name, err)
		} else {
			o = proc.Store(name, body)
		}
		reporter.Progress(i+1, len(urls), o)
	}

	reporter.Summary("下载完成", &proc.Stats, opts.DryRun)
	return &proc.Stats, nil
}

func loadPage(ctx context.Context, fs afero.Fs, f *fetcher.Fetcher, pageURL, htmlFile string) ([]byte, error) {
	if htmlFile != "" {
		return fetcher.ReadHTMLFile(fs, htmlFile)
	}
	logger.Info().Str("url", pageURL).Msg("正在访问")
	return f.Page(ctx, pageURL)
}

func saveDebugPage(fs afero.Fs, outDir string, page []byte) {
	if len(page) == 0 {
		return
	}
	path, err := fetcher.SaveDebugPage(fs, outDir, page)
	if err != nil {
		logger.Warn().Err(err).Msg("保存页面失败")
		return
	}
	logger.Warn().Str("path", path).Msg("页面内容已保存，请手动检查")
}
