package fileprocessor

import (
	"errors"
	"fmt"
)

var (
	// ErrDirNotFound 目标目录不存在，整个运行无法继续
	ErrDirNotFound = errors.New("目标目录不存在")

	// ErrDirLocked 目标目录正被另一个进程处理
	ErrDirLocked = errors.New("目标目录正被另一个进程处理")

	// ErrTooSmall 文件小于最小字节数
	ErrTooSmall = errors.New("文件过小")

	// ErrEmptyName 清理后文件名为空
	ErrEmptyName = errors.New("清理后的文件名为空")
)

// FileError 单个文件的 I/O 错误（权限、磁盘等）
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
