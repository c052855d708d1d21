package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Backend 定义按字符串键读写缓存产物的最小契约，本地磁盘与远端对象存储共用。
// 键是 / 分隔的相对路径，形如 v7/foo/foo-1.0.tar.gz。
type Backend interface {
	// Get 返回可流式读取的缓存条目，不存在时返回 ErrNotFound。
	Get(ctx context.Context, key string) (*ReadResult, error)

	// Put 写入一个缓存产物并返回新的条目描述。实现必须保证写入原子性
	// （写临时位置再发布），并按 opts.ModTime 保留产物的新鲜度时间戳。
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (*Entry, error)

	// List 返回键以 prefix 开头的全部条目。
	List(ctx context.Context, prefix string) ([]Entry, error)

	// Remove 删除一个条目，条目不存在不算错误。
	Remove(ctx context.Context, key string) error
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	// ModTime 是产物的新鲜度时间戳（通常取自需求的 LastModified），
	// 零值时实现使用当前时间。
	ModTime time.Time
}

// Entry 描述一个缓存条目。
type Entry struct {
	Key       string    `json:"key"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合条目描述与正文 Reader，调用方负责 Close。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadCloser
}

// ErrNotFound 表示缓存条目不存在。
var ErrNotFound = errors.New("cache entry not found")
