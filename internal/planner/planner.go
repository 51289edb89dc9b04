// Package planner 为改名计算不冲突的目标文件名。
//
// 冲突时在扩展名前追加 "_N"（N 从 1 开始递增），直到找到空闲的名字。
// 同一次运行中已经应用（或在预览模式下计划）的改名记录在 Namespace 中，
// 与磁盘上的真实目录合并判断，避免后续文件占用刚刚腾出或刚刚占用的名字时出错。
package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal/naming"
)

// ErrCollisionExhausted 在计数上限内找不到空闲文件名
var ErrCollisionExhausted = errors.New("无法找到不冲突的文件名")

// Reason 改名原因，可组合
type Reason uint8

const (
	ReasonTrailingPunctuation Reason = 1 << iota
	ReasonExtensionMismatch
)

func (r Reason) String() string {
	var parts []string
	if r&ReasonTrailingPunctuation != 0 {
		parts = append(parts, "punctuation")
	}
	if r&ReasonExtensionMismatch != 0 {
		parts = append(parts, "extension")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// RenamePlan 一次改名计划
// 只有 Proposed 与 Original 不同时才会生成计划
type RenamePlan struct {
	Original string
	Proposed string
	Final    string
	Reason   Reason
}

// Namespace 目标目录的名字空间：一次目录快照加上本次运行中已应用的改名
type Namespace struct {
	fs      afero.Fs
	dir     string
	names   map[string]struct{}
	vacated map[string]struct{}
	dryRun  bool
}

// NewNamespace 读取一次目录内容作为快照
func NewNamespace(fs afero.Fs, dir string) (*Namespace, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败: %w", err)
	}
	ns := &Namespace{
		fs:      fs,
		dir:     dir,
		names:   make(map[string]struct{}, len(entries)),
		vacated: make(map[string]struct{}),
	}
	for _, e := range entries {
		ns.names[e.Name()] = struct{}{}
	}
	return ns, nil
}

// Dir 返回名字空间对应的目录
func (ns *Namespace) Dir() string {
	return ns.dir
}

// SetDryRun 标记改名只记录在名字空间中，磁盘上的文件不会移动
func (ns *Namespace) SetDryRun(dryRun bool) {
	ns.dryRun = dryRun
}

// Len 当前已知的名字数量
func (ns *Namespace) Len() int {
	return len(ns.names)
}

// Exists 判断名字是否已被占用
// 快照或本次运行占用的名字一定算占用；预览模式下本次运行腾出的名字算空闲；
// 其余情况以磁盘为准，以发现快照之后外部新建的文件
func (ns *Namespace) Exists(name string) bool {
	if _, ok := ns.names[name]; ok {
		return true
	}
	// 预览模式下腾出的文件仍在磁盘上
	if _, ok := ns.vacated[name]; ok && ns.dryRun {
		return false
	}
	exists, err := afero.Exists(ns.fs, filepath.Join(ns.dir, name))
	// 无法确认时按已占用处理
	return err != nil || exists
}

// Claim 记录新写入的名字
func (ns *Namespace) Claim(name string) {
	ns.names[name] = struct{}{}
	delete(ns.vacated, name)
}

// Apply 记录一次改名：from 腾出，to 被占用
func (ns *Namespace) Apply(from, to string) {
	if from == to {
		return
	}
	delete(ns.names, from)
	ns.vacated[from] = struct{}{}
	ns.Claim(to)
}

// sameFile 判断两个名字是否指向同一个文件（例如大小写不敏感的文件系统）
func (ns *Namespace) sameFile(a, b string) bool {
	if a == b {
		return true
	}
	fa, err := ns.fs.Stat(filepath.Join(ns.dir, a))
	if err != nil {
		return false
	}
	fb, err := ns.fs.Stat(filepath.Join(ns.dir, b))
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// Plan 计算最终文件名
// proposed 空闲或与 original 是同一个文件时直接使用；否则依次尝试 stem_1.ext、stem_2.ext ……
// 尝试次数以名字空间大小加一为上限
func Plan(ns *Namespace, original, proposed string) (string, error) {
	if !ns.Exists(proposed) || ns.sameFile(original, proposed) {
		return proposed, nil
	}

	stem, ext := naming.SplitExt(proposed)
	limit := ns.Len() + 1
	for i := 1; i <= limit; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if candidate == original || !ns.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", proposed, ErrCollisionExhausted)
}

// PlanRename 基于一次新的目录快照计算最终文件名
func PlanRename(fs afero.Fs, dir, original, proposed string) (string, error) {
	ns, err := NewNamespace(fs, dir)
	if err != nil {
		return "", err
	}
	return Plan(ns, original, proposed)
}
