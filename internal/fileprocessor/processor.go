package fileprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/logger"
	"github.com/moyu-x/image-tidy/internal/naming"
	"github.com/moyu-x/image-tidy/internal/planner"
)

// ProgressFunc 每处理完一个文件调用一次
type ProgressFunc func(current, total int, o Outcome)

// New 创建新的文件处理器
// dir 必须已存在，否则返回 ErrDirNotFound
func New(fs afero.Fs, dir string, opts Options) (*Processor, error) {
	if err := checkDir(fs, dir); err != nil {
		return nil, err
	}

	// 整个运行只读取一次目录快照，之后的改名记录在名字空间中
	ns, err := planner.NewNamespace(fs, dir)
	if err != nil {
		return nil, err
	}
	ns.SetDryRun(opts.DryRun)

	return &Processor{
		Fs:   fs,
		Dir:  dir,
		Opts: opts,
		ns:   ns,
	}, nil
}

// ProcessDir 依次处理目录中的所有文件
// 单个文件的错误只记录不中断；ctx 取消时在两个文件之间停止，已完成的改名保持生效
func (p *Processor) ProcessDir(ctx context.Context, onProgress ProgressFunc) (*Stats, error) {
	entries, err := List(p.Fs, p.Dir)
	if err != nil {
		return nil, err
	}

	exts := normalizeExtensions(p.Opts.Extensions)
	// 未指定时修正扩展名只看图片文件，BMP 的两字节文件头很容易在文本中命中
	if exts == nil && p.Opts.FixExtensions {
		exts = normalizeExtensions(internal.DefaultImageExtensions)
	}
	var selected []FileEntry
	for _, e := range entries {
		if accept(exts, e.Name) {
			selected = append(selected, e)
		}
	}

	p.Stats.Total = len(selected)
	logger.Info().
		Str("dir", p.Dir).
		Int("count", len(selected)).
		Bool("dry_run", p.Opts.DryRun).
		Msg("找到待处理文件")

	for i, entry := range selected {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("processed", i).Msg("处理被中断")
			return &p.Stats, err
		}

		o := p.ProcessFile(entry)
		p.Stats.Add(o)
		if onProgress != nil {
			onProgress(i+1, len(selected), o)
		}
	}

	return &p.Stats, nil
}

// ProcessFile 处理单个文件：清理末尾字符 → 识别格式修正扩展名 → 规划不冲突的名字 → 改名
func (p *Processor) ProcessFile(entry FileEntry) Outcome {
	o := Outcome{
		Original: entry.Name,
		Final:    entry.Name,
		Status:   internal.StatusUnchanged,
		Size:     entry.Size,
	}

	proposed := entry.Name
	var reason planner.Reason

	if p.Opts.Clean {
		if cleaned := naming.CleanTrailingPunctuation(proposed); cleaned != proposed {
			proposed = cleaned
			reason |= planner.ReasonTrailingPunctuation
		}
		if proposed == "" {
			return p.fail(o, fmt.Errorf("%q: %w", entry.Name, ErrEmptyName))
		}
	}

	if p.Opts.FixExtensions {
		format, err := p.detectFormat(entry)
		if err != nil {
			return p.fail(o, err)
		}
		o.Format = format
		if renamed, ok := naming.ResolveExtension(proposed, format); ok {
			proposed = renamed
			reason |= planner.ReasonExtensionMismatch
		}
	}

	if proposed == entry.Name {
		logger.Debug().
			Str("file", entry.Name).
			Str("format", o.Format.String()).
			Msg("无需修改")
		return o
	}

	final, err := planner.Plan(p.ns, entry.Name, proposed)
	if err != nil {
		return p.fail(o, err)
	}

	o.Plan = &planner.RenamePlan{
		Original: entry.Name,
		Proposed: proposed,
		Final:    final,
		Reason:   reason,
	}

	if err := p.rename(entry.Name, final); err != nil {
		o = p.fail(o, err)
		p.record(o)
		return o
	}

	o.Final = final
	o.Status = internal.StatusChanged
	p.record(o)

	logger.Info().
		Str("from", entry.Name).
		Str("to", final).
		Str("reason", reason.String()).
		Bool("dry_run", p.Opts.DryRun).
		Msg("已修复")
	return o
}

// fail 将错误转换为失败结果
func (p *Processor) fail(o Outcome, err error) Outcome {
	o.Status = internal.StatusFailed
	o.Err = err
	logger.Error().Err(err).Str("file", o.Original).Msg("处理文件失败")
	return o
}

// record 写入改名日志，预览模式和未配置日志时跳过
// 失败的改名或写入也记录，final 为计划中的目标名
func (p *Processor) record(o Outcome) {
	if p.Opts.Journal == nil || p.Opts.DryRun {
		return
	}

	rec := &internal.JournalRecord{
		RunID:     p.Opts.RunID,
		Dir:       p.Dir,
		Original:  o.Original,
		Final:     o.Final,
		Status:    o.Status,
		Format:    o.Format.String(),
		CreatedAt: time.Now().Unix(),
	}
	if o.Plan != nil {
		rec.Final = o.Plan.Final
		rec.Reason = o.Plan.Reason.String()
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}

	if err := p.Opts.Journal.Record(rec); err != nil {
		logger.Warn().Err(err).Str("file", o.Final).Msg("写入改名日志失败")
	}
}
