package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/matysek/pip-accel/internal/config"
	"github.com/matysek/pip-accel/internal/logging"
	"github.com/matysek/pip-accel/internal/requirement"
)

// ErrUncacheable 表示需求不参与缓存（当前只有可编辑安装）。
var ErrUncacheable = errors.New("requirement is not cacheable")

// Manager 把注册表中可用的后端组合成一个读写层：读取时按顺序询问各后端并
// 校验新鲜度，写入时将产物分发给全部后端。单个后端故障只降级该后端，
// 不会让整次安装失败——远端缓存坏掉最多意味着多一次本地构建。
type Manager struct {
	cfg      *config.Config
	logger   *logrus.Logger
	backends []managedBackend
}

type managedBackend struct {
	name    string
	backend Backend
}

// NewManager 根据注册表与配置实例化全部可用后端。被配置禁用的后端
// （工厂返回 ErrBackendDisabled）静默跳过，其它构造失败直接上抛。
func NewManager(cfg *config.Config, logger *logrus.Logger) (*Manager, error) {
	m := &Manager{cfg: cfg, logger: logger}

	for _, def := range Definitions() {
		backend, err := def.Factory(cfg)
		if err != nil {
			if errors.Is(err, ErrBackendDisabled) {
				continue
			}
			return nil, fmt.Errorf("初始化缓存后端 %s 失败: %w", def.Name, err)
		}
		m.backends = append(m.backends, managedBackend{name: def.Name, backend: backend})
	}

	if len(m.backends) == 0 {
		return nil, errors.New("没有可用的缓存后端")
	}
	return m, nil
}

// Backends 返回启用的后端名称，按查询顺序排列。
func (m *Manager) Backends() []string {
	names := make([]string, len(m.backends))
	for i, mb := range m.backends {
		names[i] = mb.name
	}
	return names
}

// Fetch 为需求查找一份新鲜的缓存产物。后端按顺序询问，读取失败的后端记一条
// 告警后跳过；修改时间早于需求 LastModified 的条目视为过期，同样跳过。
// 所有后端都未命中时返回 ErrNotFound。
func (m *Manager) Fetch(ctx context.Context, req *requirement.Requirement) (*ReadResult, error) {
	if !Cacheable(req) {
		return nil, ErrUncacheable
	}

	key, err := Key(m.cfg, req)
	if err != nil {
		return nil, err
	}
	lastModified, err := req.LastModified()
	if err != nil {
		return nil, err
	}

	for _, mb := range m.backends {
		result, err := mb.backend.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			m.logger.WithFields(logrus.Fields{
				"action":  "cache_backend_error",
				"backend": mb.name,
				"key":     key,
			}).Warn(err.Error())
			continue
		}

		if result.Entry.ModTime.Before(lastModified) {
			// 源码归档比缓存产物新，命中无效。
			result.Reader.Close()
			fields := logging.RequirementFields(req)
			fields["action"] = "cache_stale"
			fields["backend"] = mb.name
			fields["key"] = key
			m.logger.WithFields(fields).Info("缓存产物已过期")
			continue
		}

		fields := logging.RequirementFields(req)
		fields["action"] = "cache_hit"
		fields["backend"] = mb.name
		fields["key"] = key
		m.logger.WithFields(fields).Debug("缓存命中")
		return result, nil
	}

	return nil, ErrNotFound
}

// Store 把构建好的二进制产物写入全部后端，时间戳取需求的 LastModified。
// 只要有一个后端写入成功就算成功，失败的后端记告警。
func (m *Manager) Store(ctx context.Context, req *requirement.Requirement, body io.Reader) (*Entry, error) {
	if !Cacheable(req) {
		return nil, ErrUncacheable
	}

	key, err := Key(m.cfg, req)
	if err != nil {
		return nil, err
	}
	lastModified, err := req.LastModified()
	if err != nil {
		return nil, err
	}

	// 多后端分发需要重复读取正文。产物此刻已经完整在手，直接缓冲。
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var stored *Entry
	for _, mb := range m.backends {
		entry, err := mb.backend.Put(ctx, key, bytes.NewReader(payload), PutOptions{ModTime: lastModified})
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"action":  "cache_backend_error",
				"backend": mb.name,
				"key":     key,
			}).Warn(err.Error())
			continue
		}
		if stored == nil {
			stored = entry
		}
	}

	if stored == nil {
		return nil, fmt.Errorf("所有缓存后端写入均失败 (%s)", key)
	}
	return stored, nil
}
