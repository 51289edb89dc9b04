package fileprocessor

import (
	"github.com/moyu-x/image-tidy/internal/logger"
	"github.com/moyu-x/image-tidy/internal/sniff"
)

// detectFormat 读取文件头部并识别图片格式
func (p *Processor) detectFormat(entry FileEntry) (sniff.Format, error) {
	file, err := entry.Open()
	if err != nil {
		return sniff.Unknown, &FileError{Op: "open", Path: entry.Path, Err: err}
	}
	defer file.Close()

	head, err := sniff.ReadFrom(file, sniff.HeaderSize)
	if err != nil {
		return sniff.Unknown, &FileError{Op: "read", Path: entry.Path, Err: err}
	}

	if len(head) < sniff.HeaderSize {
		logger.Debug().
			Str("file", entry.Name).
			Int("bytes", len(head)).
			Msg("文件头不完整")
	}

	return sniff.Detect(head), nil
}
