package cache

import (
	"fmt"

	"github.com/matysek/pip-accel/internal/config"
	"github.com/matysek/pip-accel/internal/requirement"
)

// Key 从需求的身份元组导出缓存键：v<rev>/<name>/<name>-<version>.tar.gz。
// 缓存布局版本号编码在键里，不兼容的布局永远不会互相命中。
func Key(cfg *config.Config, req *requirement.Requirement) (string, error) {
	version, err := req.Version()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("v%d/%s/%s-%s.tar.gz",
		cfg.CacheFormatRevision(), req.Name(), req.Name(), version), nil
}

// Cacheable 判断需求是否参与缓存。可编辑安装链接到工作目录，
// 产物不可复用，因此永远不读写缓存。
func Cacheable(req *requirement.Requirement) bool {
	return !req.Editable()
}
