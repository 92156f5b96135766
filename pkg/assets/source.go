// Package assets 展品图片的获取、解码与懒加载
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrClosed   = errors.New("加载器已关闭")
	ErrNotFound = errors.New("图片不存在")
	ErrDenied   = errors.New("无权访问")
)

// Source 按图片键返回原始字节
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// ValidKey 图片键必须是相对路径，且不能跳出根目录
func ValidKey(key string) bool {
	if key == "" || strings.Contains(key, `\`) || path.IsAbs(key) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(key))
}

// DirSource 从本地目录读取图片
type DirSource struct {
	Root string
}

// NewDirSource 检查目录存在后创建
func NewDirSource(root string) (*DirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("打开图片目录失败: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s 不是目录", root)
	}
	return &DirSource{Root: root}, nil
}

// Fetch 读取 Root/key
func (s *DirSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: 非法路径 %q", ErrDenied, key)
	}

	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", key, err)
	}
	return data, nil
}

// SourceFunc 函数适配为 Source
type SourceFunc func(ctx context.Context, key string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, key string) ([]byte, error) {
	return f(ctx, key)
}
