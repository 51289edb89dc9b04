package fileprocessor

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// calculateHash 计算文件的 xxHash 哈希值
func (p *Processor) calculateHash(filePath string) (uint64, error) {
	file, err := p.Fs.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return 0, fmt.Errorf("计算哈希失败: %w", err)
	}
	return h.Sum64(), nil
}

// sameContent 判断磁盘上的文件内容是否与 body 相同
func (p *Processor) sameContent(filePath string, body []byte) bool {
	info, err := p.Fs.Stat(filePath)
	if err != nil || info.Size() != int64(len(body)) {
		return false
	}
	h, err := p.calculateHash(filePath)
	if err != nil {
		return false
	}
	return h == xxhash.Sum64(body)
}
