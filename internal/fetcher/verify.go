package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/moyu-x/image-tidy/internal/sniff"
)

// ErrNotImage 下载内容不是可识别的图片
var ErrNotImage = errors.New("内容不是图片")

// VerifyImage 确认内容能被对应格式的解码器解析出尺寸
func VerifyImage(body []byte, format sniff.Format) error {
	if format == sniff.Unknown {
		if hint := sniff.Hint(body); hint != "" {
			return fmt.Errorf("%w: %s", ErrNotImage, hint)
		}
		return ErrNotImage
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("解码 %s 失败: %w", format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%s 尺寸无效: %dx%d", name, cfg.Width, cfg.Height)
	}
	return nil
}
