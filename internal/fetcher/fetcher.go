// Package fetcher 下载公众号等文章页面中的全部图片。
//
// 页面和图片都通过 colly 请求，请求之间固定延迟，不做重试。
// 下载得到的内容交给 fileprocessor.Processor.Store 落盘，文件名以内容的真实格式为准。
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly"
	"github.com/vfaronov/httpheader"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/logger"
)

const (
	DefaultReferer        = "https://mp.weixin.qq.com/"
	DefaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
)

var (
	// ErrVerificationRequired 页面要求人机验证，无法直接抓取
	ErrVerificationRequired = errors.New("页面需要验证，无法直接访问")

	// ErrNoImages 页面中没有找到图片地址
	ErrNoImages = errors.New("未找到图片URL")
)

// Options 抓取选项
type Options struct {
	UserAgent string
	Referer   string
	Delay     time.Duration // 两次请求之间的固定延迟
	Timeout   time.Duration
	Prefix    string // 无法从地址推断文件名时使用的前缀
}

// Fetcher 基于 colly 的页面与图片抓取器
type Fetcher struct {
	opts Options
	base *colly.Collector
}

// New 创建抓取器，零值选项使用默认值
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = internal.DefaultUserAgent
	}
	if opts.Referer == "" {
		opts.Referer = DefaultReferer
	}
	if opts.Timeout <= 0 {
		opts.Timeout = internal.DefaultFetchTimeout
	}
	if opts.Prefix == "" {
		opts.Prefix = internal.DefaultFilePrefix
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
	)
	c.SetRequestTimeout(opts.Timeout)
	if opts.Delay > 0 {
		_ = c.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      opts.Delay,
		})
	}

	return &Fetcher{opts: opts, base: c}
}

// collector 为单次请求克隆收集器，共享限速规则
func (f *Fetcher) collector() *colly.Collector {
	c := f.base.Clone()

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", DefaultAccept)
		r.Headers.Set("Accept-Language", DefaultAcceptLanguage)
		r.Headers.Set("Referer", f.opts.Referer)
		logger.Debug().Str("url", r.URL.String()).Msg("请求")
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn().
			Err(err).
			Int("status", r.StatusCode).
			Str("url", r.Request.URL.String()).
			Msg("请求失败")
	})

	return c
}

// get 请求一个地址，返回响应体和响应头
// text 为 true 时由 colly 按响应头和页面 meta 把正文转换为 UTF-8
func (f *Fetcher) get(ctx context.Context, rawURL string, text bool) ([]byte, http.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		body    []byte
		headers http.Header
	)
	c := f.collector()
	c.DetectCharset = text
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		if r.Headers != nil {
			headers = *r.Headers
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, nil, fmt.Errorf("请求 %s 失败: %w", rawURL, err)
	}
	return body, headers, nil
}

// Page 获取文章页面，编码由 colly 转换为 UTF-8
// 页面需要验证时同时返回页面内容和 ErrVerificationRequired，便于调用方保存调试文件
func (f *Fetcher) Page(ctx context.Context, pageURL string) ([]byte, error) {
	html, _, err := f.get(ctx, pageURL, true)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("url", pageURL).Int("bytes", len(html)).Msg("页面获取成功")
	if NeedsVerification(html) {
		return html, ErrVerificationRequired
	}
	return html, nil
}

// Download 下载一张图片，返回内容和建议文件名
// 建议文件名优先取 Content-Disposition，其次由地址推断
func (f *Fetcher) Download(ctx context.Context, imageURL string, index int) ([]byte, string, error) {
	suggested := SuggestFilename(imageURL, index, f.opts.Prefix)

	body, headers, err := f.get(ctx, EnsureWxFmt(imageURL), false)
	if err != nil {
		return nil, suggested, err
	}

	if _, name, err := httpheader.ContentDisposition(headers); err == nil && name != "" {
		suggested = SanitizeFilename(name)
	}
	return body, suggested, nil
}
