package fileprocessor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal/naming"
)

// FileEntry 目录中的一个普通文件
type FileEntry struct {
	Name string
	Path string
	Size int64

	fs afero.Fs
}

// Open 打开文件读取内容
func (e FileEntry) Open() (afero.File, error) {
	return e.fs.Open(e.Path)
}

// List 按文件名排序列出目录下的普通文件，不递归
func List(afs afero.Fs, dir string) ([]FileEntry, error) {
	if err := checkDir(afs, dir); err != nil {
		return nil, err
	}

	// afero.ReadDir 按名称排序，保证多次运行顺序一致
	infos, err := afero.ReadDir(afs, dir)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败: %w", err)
	}

	entries := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, FileEntry{
			Name: info.Name(),
			Path: filepath.Join(dir, info.Name()),
			Size: info.Size(),
			fs:   afs,
		})
	}
	return entries, nil
}

// checkDir 确认目录存在
func checkDir(afs afero.Fs, dir string) error {
	info, err := afs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", dir, ErrDirNotFound)
		}
		return fmt.Errorf("检查目标目录失败: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s 不是目录: %w", dir, ErrDirNotFound)
	}
	return nil
}

// normalizeExtensions 将配置中的扩展名统一为小写带点
func normalizeExtensions(exts []string) map[string]bool {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// accept 判断文件是否在扩展名过滤范围内
// 按清理末尾字符之后的扩展名判断，"a.jpg'" 视为 .jpg
func accept(set map[string]bool, name string) bool {
	if set == nil {
		return true
	}
	_, ext := naming.SplitExt(naming.CleanTrailingPunctuation(name))
	return set[strings.ToLower(ext)]
}
