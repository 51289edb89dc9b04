package fileprocessor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
)

// DirLock 目标目录的进程间互斥锁
// 锁文件放在系统临时目录，不会出现在目标目录的文件列表中
type DirLock struct {
	fl *flock.Flock
}

// LockDir 对目录加锁，已被其他进程持有时立即返回 ErrDirLocked
func LockDir(dir string) (*DirLock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("解析目录路径失败: %w", err)
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf(lockFilePattern, xxhash.Sum64String(abs)))

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("获取目录锁失败: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", dir, ErrDirLocked)
	}
	return &DirLock{fl: fl}, nil
}

// Path 锁文件路径
func (l *DirLock) Path() string {
	return l.fl.Path()
}

// Unlock 释放锁
func (l *DirLock) Unlock() error {
	return l.fl.Unlock()
}
