package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/net/html/charset"
)

const debugPageName = "page_debug.html"

// DecodeHTML 按 Content-Type 或页面 meta 声明把保存的页面转换为 UTF-8
func DecodeHTML(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("识别页面编码失败: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("转换页面编码失败: %w", err)
	}
	return out, nil
}

// ReadHTMLFile 读取离线保存的页面
func ReadHTMLFile(fs afero.Fs, path string) ([]byte, error) {
	body, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("读取页面文件失败: %w", err)
	}
	return DecodeHTML(body, "")
}

// SaveDebugPage 将页面保存到输出目录的上一级，便于手动检查
func SaveDebugPage(fs afero.Fs, outDir string, page []byte) (string, error) {
	parent := filepath.Dir(filepath.Clean(outDir))
	if err := fs.MkdirAll(parent, 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	target := filepath.Join(parent, debugPageName)
	if err := afero.WriteFile(fs, target, page, 0644); err != nil {
		return "", fmt.Errorf("保存调试页面失败: %w", err)
	}
	return target, nil
}
