package fetcher

import (
	"errors"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

const maxURLLength = 2048

var (
	ErrClipboardRead = errors.New("读取剪贴板失败")
	ErrInvalidURL    = errors.New("剪贴板内容不是有效的URL")
)

// ExtractURL 校验文本是否为单个 http/https 地址，不是时返回空字符串
func ExtractURL(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxURLLength || strings.ContainsAny(text, "\n\r") {
		return ""
	}

	u, err := url.Parse(text)
	if err != nil {
		return ""
	}
	if (u.Scheme != "http" && u.Scheme != "https") || strings.TrimSpace(u.Host) == "" {
		return ""
	}
	return u.String()
}

// ReadClipboardURL 从剪贴板读取文章地址
func ReadClipboardURL() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", ErrClipboardRead
	}
	u := ExtractURL(text)
	if u == "" {
		return "", ErrInvalidURL
	}
	return u, nil
}
