package app

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/database"
	"github.com/moyu-x/image-tidy/internal/naming"
	"github.com/moyu-x/image-tidy/internal/sniff"
)

// SniffResult 单个文件的格式识别结果
type SniffResult struct {
	Path     string
	Format   sniff.Format
	Hint     string // filetype 给出的 MIME，仅供参考
	Expected string // 按格式应有的文件名，无需修改时为空
	Err      error
}

// SniffFiles 识别文件格式，不修改任何文件
func SniffFiles(fs afero.Fs, paths []string) []SniffResult {
	results := make([]SniffResult, 0, len(paths))
	for _, p := range paths {
		r := SniffResult{Path: p}
		head, err := sniff.ReadPrefix(fs, p, sniff.HintSize)
		if err != nil {
			r.Err = err
			results = append(results, r)
			continue
		}
		r.Format = sniff.Detect(head)
		r.Hint = sniff.Hint(head)
		base := filepath.Base(p)
		name := naming.CleanTrailingPunctuation(base)
		if resolved, ok := naming.ResolveExtension(name, r.Format); ok {
			name = resolved
		}
		if name != base {
			r.Expected = name
		}
		results = append(results, r)
	}
	return results
}

// History 读取改名日志，runID 非空时只返回该次运行的记录
func History(path string, limit int, runID string) ([]internal.JournalRecord, error) {
	db, err := database.New(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if runID != "" {
		return db.ListRun(runID)
	}
	return db.List(limit)
}
