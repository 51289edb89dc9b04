// Package sniff 通过文件头魔数识别图片的真实格式。
//
// 只识别固定的五种格式：JPEG、PNG、GIF、WEBP、BMP，其余一律为 Unknown。
package sniff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/h2non/filetype"
	"github.com/spf13/afero"
)

const (
	// HeaderSize 识别格式所需读取的文件头字节数
	HeaderSize = 12

	// HintSize filetype 做类型提示时读取的字节数
	HintSize = 261
)

// Format 图片格式标签
type Format int

const (
	Unknown Format = iota
	JPEG
	PNG
	GIF
	WEBP
	BMP
)

var formatNames = map[Format]string{
	Unknown: "unknown",
	JPEG:    "jpeg",
	PNG:     "png",
	GIF:     "gif",
	WEBP:    "webp",
	BMP:     "bmp",
}

var formatExtensions = map[Format]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	WEBP: ".webp",
	BMP:  ".bmp",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Extension 返回格式对应的规范扩展名，Unknown 返回空串
func (f Format) Extension() string {
	return formatExtensions[f]
}

// Anchor 在固定偏移处必须出现的字节序列
type Anchor struct {
	Offset int
	Magic  []byte
}

func (a Anchor) match(head []byte) bool {
	end := a.Offset + len(a.Magic)
	if end > len(head) {
		return false
	}
	return bytes.Equal(head[a.Offset:end], a.Magic)
}

// Signature 将一组锚点与格式对应，所有锚点都匹配才算命中
type Signature struct {
	Format  Format
	Anchors []Anchor
}

// Match 判断文件头是否满足该签名
func (s Signature) Match(head []byte) bool {
	for _, a := range s.Anchors {
		if !a.match(head) {
			return false
		}
	}
	return len(s.Anchors) > 0
}

// signatures 按优先级排列，先命中者生效
var signatures = []Signature{
	{JPEG, []Anchor{{0, []byte{0xFF, 0xD8, 0xFF}}}},
	{PNG, []Anchor{{0, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}}}},
	{GIF, []Anchor{{0, []byte("GIF87a")}}},
	{GIF, []Anchor{{0, []byte("GIF89a")}}},
	// RIFF 是通用容器（WAV、AVI 也用），必须同时检查第 8 字节处的 WEBP
	{WEBP, []Anchor{{0, []byte("RIFF")}, {8, []byte("WEBP")}}},
	{BMP, []Anchor{{0, []byte("BM")}}},
}

// Signatures 返回签名表的副本
func Signatures() []Signature {
	out := make([]Signature, len(signatures))
	copy(out, signatures)
	return out
}

// Detect 根据文件头判断格式，输入过短时返回 Unknown，不会 panic
func Detect(head []byte) Format {
	for _, sig := range signatures {
		if sig.Match(head) {
			return sig.Format
		}
	}
	return Unknown
}

// ReadHeader 读取文件的前 HeaderSize 个字节
// 文件不足 HeaderSize 字节时返回实际读到的内容，不视为错误
func ReadHeader(fs afero.Fs, path string) ([]byte, error) {
	return ReadPrefix(fs, path, HeaderSize)
}

// ReadPrefix 读取文件的前 size 个字节
func ReadPrefix(fs afero.Fs, path string, size int) ([]byte, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	return ReadFrom(file, size)
}

// ReadFrom 从 r 中读取至多 size 个字节，数据不足不视为错误
func ReadFrom(r io.Reader, size int) ([]byte, error) {
	head := make([]byte, size)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件头部失败: %w", err)
	}
	return head[:n], nil
}

// SniffFile 读取文件头并识别格式，只有 I/O 错误才会返回 error
func SniffFile(fs afero.Fs, path string) (Format, error) {
	head, err := ReadHeader(fs, path)
	if err != nil {
		return Unknown, err
	}
	return Detect(head), nil
}

// Hint 返回 filetype 识别出的 MIME 类型，仅用于诊断输出
// 该结果不参与重命名决策
func Hint(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}
