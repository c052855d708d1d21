package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matysek/pip-accel/internal/config"
)

func init() {
	MustRegister(BackendDefinition{
		Name:  "remote",
		Order: 20,
		Factory: func(cfg *config.Config) (Backend, error) {
			endpoint := cfg.S3CacheBucket()
			if endpoint == "" {
				return nil, ErrBackendDisabled
			}
			return NewHTTPBackend(endpoint, cfg.S3CachePrefix())
		},
	})
}

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// NewHTTPBackend 构造共享缓存服务的客户端。endpoint 是服务基地址
// （即 s3-bucket 配置项，如 http://cache.internal:8080），prefix 为所有键
// 拼接的命名空间前缀。传输层不限制整体超时：缓存产物可能很大，取消语义
// 由调用方的 context 承担。
func NewHTTPBackend(endpoint, prefix string) (Backend, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("无法解析远端缓存地址 %q: %w", endpoint, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("远端缓存地址必须是 http(s) URL，得到 %q", endpoint)
	}

	return &httpBackend{
		base:   base,
		prefix: strings.Trim(prefix, "/"),
		client: &http.Client{Transport: defaultTransport.Clone()},
	}, nil
}

type httpBackend struct {
	base   *url.URL
	prefix string
	client *http.Client
}

func (b *httpBackend) Get(ctx context.Context, key string) (*ReadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.entryURL(key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// 正文由调用方流式读取并关闭。
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("远端缓存读取失败 (%s): %s", key, resp.Status)
	}

	entry := Entry{Key: key}
	// 分块传输时 ContentLength 为 -1，条目大小保持 0 表示未知。
	if resp.ContentLength > 0 {
		entry.SizeBytes = resp.ContentLength
	}
	if raw := resp.Header.Get("Last-Modified"); raw != "" {
		if modTime, err := http.ParseTime(raw); err == nil {
			entry.ModTime = modTime
		}
	}

	return &ReadResult{Entry: entry, Reader: resp.Body}, nil
}

func (b *httpBackend) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.entryURL(key), body)
	if err != nil {
		return nil, err
	}

	modTime := opts.ModTime
	if modTime.IsZero() {
		modTime = time.Now().UTC()
	}
	req.Header.Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("远端缓存写入失败 (%s): %s", key, resp.Status)
	}

	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("远端缓存写入响应无法解析 (%s): %w", key, err)
	}
	entry.Key = key
	return &entry, nil
}

func (b *httpBackend) List(ctx context.Context, prefix string) ([]Entry, error) {
	listURL := b.base.JoinPath("cache")
	query := listURL.Query()
	query.Set("prefix", b.remoteKey(prefix))
	listURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("远端缓存列举失败: %s", resp.Status)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("远端缓存列举响应无法解析: %w", err)
	}

	// 剥掉命名空间前缀，调用方只关心本地形态的键。
	for i := range entries {
		entries[i].Key = strings.TrimPrefix(strings.TrimPrefix(entries[i].Key, b.prefix), "/")
	}
	return entries, nil
}

func (b *httpBackend) Remove(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.entryURL(key), nil)
	if err != nil {
		return err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("远端缓存删除失败 (%s): %s", key, resp.Status)
	}
	return nil
}

func (b *httpBackend) remoteKey(key string) string {
	if b.prefix == "" {
		return key
	}
	if key == "" {
		return b.prefix
	}
	return b.prefix + "/" + key
}

func (b *httpBackend) entryURL(key string) string {
	u := b.base.JoinPath("cache", b.remoteKey(key))
	return u.String()
}
