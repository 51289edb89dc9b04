// Package naming 负责文件名的规范化：清理末尾异常字符、按真实格式修正扩展名。
// 这里的函数都是纯字符串操作，不访问文件系统。
package naming

import (
	"strings"

	"github.com/moyu-x/image-tidy/internal/sniff"
)

// TrailingCutset 从文件名末尾剥离的字符：单双引号、逗号、右括号、空格
const TrailingCutset = "'\",) "

// SplitExt 拆分主名和扩展名（扩展名带点）
// 只有点出现在首尾之间时才算扩展名：".hidden" 与 "name." 都没有扩展名
func SplitExt(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

// CleanTrailingPunctuation 清理文件名末尾的引号、逗号、括号和空格
// 先整体剥离，再对最后一个点之后的扩展名单独剥离一次，然后重新拼接
func CleanTrailingPunctuation(name string) string {
	cleaned := strings.TrimRight(name, TrailingCutset)

	i := strings.LastIndex(cleaned, ".")
	if i < 0 {
		return cleaned
	}
	stem, ext := cleaned[:i], cleaned[i+1:]
	ext = strings.TrimRight(ext, TrailingCutset)
	return stem + "." + ext
}

// ResolveExtension 根据识别出的格式计算新文件名
// 格式未知或扩展名已正确（忽略大小写）时返回 false，表示无需改名
func ResolveExtension(name string, format sniff.Format) (string, bool) {
	canonical := format.Extension()
	if canonical == "" {
		return "", false
	}

	stem, ext := SplitExt(name)
	if strings.EqualFold(ext, canonical) {
		return "", false
	}
	return stem + canonical, true
}
