package internal

import "time"

const (
	// 应用名称，用于配置目录、环境变量前缀等
	AppName = "image-tidy"

	// 改名日志数据库默认路径
	DefaultJournalPath = "~/.image-tidy/journal.db"

	// 下载文件的最小字节数，小于该值视为下载失败
	DefaultMinSize = 1

	// 下载文件名前缀
	DefaultFilePrefix = "image"

	// 两次请求之间的固定间隔
	DefaultFetchDelay = time.Second

	// 单次请求超时
	DefaultFetchTimeout = 30 * time.Second

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// 修正扩展名时默认只处理这些扩展名
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
