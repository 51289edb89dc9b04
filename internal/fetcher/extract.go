package fetcher

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	backgroundPattern = regexp.MustCompile(`background-image:\s*url\(["']?([^"'()]+)["']?\)`)
	wechatPattern     = regexp.MustCompile(`https?://mmbiz\.qpic\.cn/[^\s<>"']+`)

	imageHints = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", "wx_fmt"}
)

// looksLikeImage 地址中带有图片扩展名或微信格式参数
func looksLikeImage(u string) bool {
	lower := strings.ToLower(u)
	for _, hint := range imageHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// ExtractImageURLs 从页面中提取图片地址，保持出现顺序并去重
// 依次查找 data-src/data-original 属性、img 的 src 属性、CSS 背景图，最后匹配页面中所有 mmbiz 图片地址
func ExtractImageURLs(page []byte, base *url.URL) []string {
	var (
		urls []string
		seen = make(map[string]bool)
	)
	add := func(raw string, requireHint bool) {
		raw = strings.TrimSpace(html.UnescapeString(raw))
		if raw == "" || strings.HasPrefix(raw, "data:") {
			return
		}
		if requireHint && !looksLikeImage(raw) {
			return
		}
		abs := normalizeURL(raw, base)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		urls = append(urls, abs)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		doc.Find("[data-src], [data-original]").Each(func(_ int, s *goquery.Selection) {
			for _, attr := range []string{"data-src", "data-original"} {
				if v, ok := s.Attr(attr); ok {
					add(v, true)
				}
			}
		})
		doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr("src")
			add(v, true)
		})
	}

	for _, m := range backgroundPattern.FindAllSubmatch(page, -1) {
		add(string(m[1]), true)
	}
	for _, m := range wechatPattern.FindAll(page, -1) {
		add(string(m), false)
	}

	return urls
}

// normalizeURL 补全协议相对地址和站内地址
func normalizeURL(raw string, base *url.URL) string {
	if strings.HasPrefix(raw, "//") {
		scheme := "https"
		if base != nil && base.Scheme != "" {
			scheme = base.Scheme
		}
		raw = scheme + ":" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		if base == nil {
			return ""
		}
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// NeedsVerification 页面是否为验证页
func NeedsVerification(page []byte) bool {
	s := string(page)
	return strings.Contains(s, "环境异常") ||
		strings.Contains(s, "验证") ||
		strings.Contains(strings.ToLower(s), "captcha")
}
