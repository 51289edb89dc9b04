// Package tui 在终端中输出处理进度和统计结果。
// 处理是顺序执行的，这里只做静态渲染，不运行交互式事件循环。
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/fileprocessor"
)

const barWidth = 40

// Reporter 将每个文件的处理结果和最终统计写到终端
type Reporter struct {
	out     io.Writer
	tty     bool
	verbose bool
	bar     progress.Model
	inline  bool // 当前行是进度条，需要先换行
}

// NewReporter 创建输出器；out 是终端时绘制进度条
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:     out,
		tty:     IsTerminal(out),
		verbose: verbose,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

// IsTerminal 判断输出是否为终端
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Progress 作为 fileprocessor.ProgressFunc 使用
func (r *Reporter) Progress(current, total int, o fileprocessor.Outcome) {
	if line := r.outcomeLine(o); line != "" {
		r.breakLine()
		fmt.Fprintln(r.out, line)
	}

	if !r.tty || total == 0 {
		return
	}
	percent := float64(current) / float64(total)
	fmt.Fprintf(r.out, "\r%s %d/%d", r.bar.ViewAs(percent), current, total)
	r.inline = true
	if current == total {
		r.breakLine()
	}
}

// outcomeLine 有变化、失败或 verbose 时输出一行
func (r *Reporter) outcomeLine(o fileprocessor.Outcome) string {
	switch o.Status {
	case internal.StatusChanged:
		return FormatRename(o.Original, o.Final)
	case internal.StatusFailed:
		return errorStyle.Render("✗ "+o.Original) + " " + hintStyle.Render(errString(o.Err))
	case internal.StatusSkipped:
		if r.verbose {
			return hintStyle.Render("- " + o.Final + " (已存在)")
		}
	default:
		if r.verbose {
			return hintStyle.Render("= " + o.Original)
		}
	}
	return ""
}

func (r *Reporter) breakLine() {
	if r.inline {
		fmt.Fprintln(r.out)
		r.inline = false
	}
}

// Summary 输出最终统计
func (r *Reporter) Summary(title string, stats *fileprocessor.Stats, dryRun bool) {
	r.breakLine()
	fmt.Fprintln(r.out, RenderSummary(title, stats, dryRun))
}

// FormatRename 渲染一次改名
func FormatRename(from, to string) string {
	return filePathStyle.Render(from) + arrowStyle.Render(" → ") + filePathStyle.Render(to)
}

// RenderSummary 渲染统计框
func RenderSummary(title string, stats *fileprocessor.Stats, dryRun bool) string {
	var b strings.Builder

	switch {
	case stats.Failed > 0:
		b.WriteString(warnTitleStyle.Render("⚠ "+title) + "\n")
	default:
		b.WriteString(successTitleStyle.Render("✅ "+title) + "\n")
	}
	if dryRun {
		b.WriteString(hintStyle.Render("预览模式：未修改任何文件") + "\n")
	}
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 30)) + "\n")
	b.WriteString(stats.String())

	return statsBoxStyle.Render(b.String())
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
