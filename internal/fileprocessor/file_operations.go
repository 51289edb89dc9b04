package fileprocessor

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/logger"
	"github.com/moyu-x/image-tidy/internal/naming"
	"github.com/moyu-x/image-tidy/internal/planner"
	"github.com/moyu-x/image-tidy/internal/sniff"
)

// rename 在目录内改名，并同步到名字空间
// 预览模式下只更新名字空间
func (p *Processor) rename(from, to string) error {
	if !p.Opts.DryRun {
		src := filepath.Join(p.Dir, from)
		dst := filepath.Join(p.Dir, to)
		if err := p.Fs.Rename(src, dst); err != nil {
			return &FileError{Op: "rename", Path: src, Err: err}
		}
	}
	p.ns.Apply(from, to)
	return nil
}

// Store 将下载得到的内容写入目录
// suggested 是建议文件名，扩展名以内容的真实格式为准；
// 同名且内容相同的文件已存在时跳过，否则按冲突规则选一个空闲的名字
func (p *Processor) Store(suggested string, body []byte) Outcome {
	name := naming.CleanTrailingPunctuation(suggested)
	o := Outcome{
		Original: suggested,
		Final:    name,
		Status:   internal.StatusChanged,
		Size:     int64(len(body)),
	}
	defer func() { p.Stats.Total++; p.Stats.Add(o) }()

	if name == "" {
		o = p.fail(o, fmt.Errorf("%q: %w", suggested, ErrEmptyName))
		return o
	}

	if p.Opts.MinSize > 0 && int64(len(body)) < p.Opts.MinSize {
		o = p.fail(o, fmt.Errorf("%s: %d 字节: %w", name, len(body), ErrTooSmall))
		return o
	}

	o.Format = sniff.Detect(body)
	var reason planner.Reason
	if name != suggested {
		reason |= planner.ReasonTrailingPunctuation
	}
	if renamed, ok := naming.ResolveExtension(name, o.Format); ok {
		name = renamed
		reason |= planner.ReasonExtensionMismatch
	}

	if p.Opts.Verify != nil {
		if err := p.Opts.Verify(body, o.Format); err != nil {
			o = p.fail(o, fmt.Errorf("%s: 校验失败: %w", name, err))
			return o
		}
	}

	target := filepath.Join(p.Dir, name)
	if p.ns.Exists(name) && p.sameContent(target, body) {
		o.Final = name
		o.Status = internal.StatusSkipped
		logger.Debug().Str("file", name).Msg("内容相同的文件已存在，跳过")
		return o
	}

	final, err := planner.Plan(p.ns, "", name)
	if err != nil {
		o = p.fail(o, err)
		return o
	}
	o.Final = final
	o.Plan = &planner.RenamePlan{
		Original: suggested,
		Proposed: name,
		Final:    final,
		Reason:   reason,
	}

	if !p.Opts.DryRun {
		if err := p.write(final, body); err != nil {
			o = p.fail(o, err)
			p.record(o)
			return o
		}
	}

	o.Written = int64(len(body))
	p.ns.Claim(final)
	p.record(o)

	logger.Info().
		Str("file", final).
		Str("format", o.Format.String()).
		Int("bytes", len(body)).
		Bool("dry_run", p.Opts.DryRun).
		Msg("已保存")
	return o
}

// write 写入文件并确认大小，不满足最小字节数时删除
func (p *Processor) write(name string, body []byte) error {
	target := filepath.Join(p.Dir, name)
	if err := afero.WriteFile(p.Fs, target, body, filePerm); err != nil {
		return &FileError{Op: "write", Path: target, Err: err}
	}

	info, err := p.Fs.Stat(target)
	if err != nil {
		return &FileError{Op: "stat", Path: target, Err: err}
	}
	if p.Opts.MinSize > 0 && info.Size() < p.Opts.MinSize {
		if rmErr := p.Fs.Remove(target); rmErr != nil {
			logger.Warn().Err(rmErr).Str("file", target).Msg("删除过小文件失败")
		}
		return fmt.Errorf("%s: 写入后 %d 字节: %w", name, info.Size(), ErrTooSmall)
	}
	return nil
}

// Reject 记录一个未能获得内容的条目（例如下载失败），计入失败统计
func (p *Processor) Reject(name string, err error) Outcome {
	o := p.fail(Outcome{Original: name, Final: name}, err)
	p.Stats.Total++
	p.Stats.Add(o)
	return o
}
