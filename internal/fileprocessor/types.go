package fileprocessor

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/planner"
	"github.com/moyu-x/image-tidy/internal/sniff"
)

// Journal 记录每次实际生效的改名或写入
type Journal interface {
	Record(rec *internal.JournalRecord) error
}

// Outcome 单个文件的处理结果
type Outcome struct {
	Original string
	Final    string
	Status   internal.OutcomeStatus
	Format   sniff.Format
	Plan     *planner.RenamePlan // 无需改名时为 nil
	Size     int64
	Written  int64 // 写入目录的字节数，改名时为 0
	Err      error
}

// Changed 文件名是否发生了变化（或在预览模式下将会变化）
func (o Outcome) Changed() bool {
	return o.Status == internal.StatusChanged
}

// Stats 保存文件处理的统计信息
type Stats struct {
	Total     int   // 参与处理的文件数
	Changed   int   // 已改名或已写入
	Unchanged int   // 无需改名
	Skipped   int   // 内容重复等原因跳过
	Failed    int   // 失败
	Bytes     int64 // 写入的字节数
}

// Add 累计单个结果
func (s *Stats) Add(o Outcome) {
	switch o.Status {
	case internal.StatusChanged:
		s.Changed++
		s.Bytes += o.Written
	case internal.StatusUnchanged:
		s.Unchanged++
	case internal.StatusSkipped:
		s.Skipped++
	case internal.StatusFailed:
		s.Failed++
	}
}

func (s *Stats) String() string {
	var buf bytes.Buffer

	buf.WriteString("========== 处理统计 ==========\n")
	buf.WriteString(fmt.Sprintf("总文件数: %d\n", s.Total))
	buf.WriteString(fmt.Sprintf("已修复: %d\n", s.Changed))
	buf.WriteString(fmt.Sprintf("无需修改: %d\n", s.Unchanged))
	buf.WriteString(fmt.Sprintf("跳过: %d\n", s.Skipped))
	buf.WriteString(fmt.Sprintf("失败: %d\n", s.Failed))
	if s.Bytes > 0 {
		buf.WriteString(fmt.Sprintf("写入: %s\n", humanize.Bytes(uint64(s.Bytes))))
	}
	buf.WriteString("============================")

	return buf.String()
}

// Options 处理器选项
type Options struct {
	Clean         bool     // 清理末尾异常字符
	FixExtensions bool     // 按文件头修正扩展名
	DryRun        bool     // 只计划不执行
	MinSize       int64    // 写入文件的最小字节数
	Extensions    []string // 只处理这些扩展名（小写带点），为空时处理全部
	Verify        func(body []byte, format sniff.Format) error
	Journal       Journal
	RunID         string
}

// Processor 文件处理器：在单个目录内依次完成 识别 → 规范化 → 冲突规划 → 改名
type Processor struct {
	Fs    afero.Fs // 文件系统接口，便于测试和抽象
	Dir   string
	Opts  Options
	Stats Stats

	ns *planner.Namespace
}
