package fetcher

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/kennygrant/sanitize"

	"github.com/moyu-x/image-tidy/internal/naming"
)

const wechatHost = "mmbiz.qpic.cn"

var (
	wxFmtPattern = regexp.MustCompile(`wx_fmt=(\w+)`)
	digits       = regexp.MustCompile(`^\d+$`)
)

func isWechatImage(rawURL string) bool {
	return strings.Contains(rawURL, wechatHost)
}

// EnsureWxFmt 为缺少格式参数的微信图片地址追加 wx_fmt=jpeg
func EnsureWxFmt(rawURL string) string {
	if !isWechatImage(rawURL) || strings.Contains(rawURL, "wx_fmt") {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "wx_fmt=jpeg"
}

// SuggestFilename 根据图片地址推断文件名
// 微信图片: {prefix}_{id}.{wx_fmt 或 jpg}；路径最后一段带扩展名时直接使用；否则 {prefix}_{NNN}.jpg
// 这里的扩展名只是建议，落盘前会按内容的真实格式修正
func SuggestFilename(rawURL string, index int, prefix string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackName(prefix, index)
	}

	if isWechatImage(rawURL) {
		if id := wechatImageID(u.Path); id != "" {
			ext := "jpg"
			if m := wxFmtPattern.FindStringSubmatch(rawURL); m != nil {
				ext = m[1]
			}
			return fmt.Sprintf("%s_%s.%s", prefix, sanitize.BaseName(id), ext)
		}
	}

	base := path.Base(u.Path)
	if base != "." && base != "/" && strings.Contains(base, ".") {
		if name := SanitizeFilename(base); name != "" {
			return name
		}
	}
	return fallbackName(prefix, index)
}

// wechatImageID 取路径最后一段作为图片 ID
// 最后一段是 640 这类纯数字尺寸时改用前一段
func wechatImageID(p string) string {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	id := parts[len(parts)-1]
	if digits.MatchString(id) && len(parts) > 1 {
		id = parts[len(parts)-2]
	}
	return id
}

func fallbackName(prefix string, index int) string {
	return fmt.Sprintf("%s_%03d.jpg", prefix, index)
}

// SanitizeFilename 去掉文件名中不能用于文件系统的字符，保留扩展名
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	stem, ext := naming.SplitExt(name)
	stem = sanitize.BaseName(stem)
	ext = sanitize.BaseName(ext)
	if stem == "" {
		return ""
	}
	return stem + ext
}
