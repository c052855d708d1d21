package cache

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matysek/pip-accel/internal/config"
)

// ErrBackendDisabled 由工厂返回，表示当前配置下该后端不参与缓存
// （例如未配置 s3-bucket 时的远端后端）。Manager 会静默跳过。
var ErrBackendDisabled = errors.New("cache backend disabled")

// BackendDefinition 描述一种缓存后端：名字、查询顺序与构造工厂。
// Order 越小越先被查询，本地后端应排在远端之前。
type BackendDefinition struct {
	Name    string
	Order   int
	Factory func(cfg *config.Config) (Backend, error)
}

var globalRegistry = newRegistry()

type registry struct {
	mu       sync.RWMutex
	backends map[string]BackendDefinition
}

func newRegistry() *registry {
	return &registry{backends: make(map[string]BackendDefinition)}
}

// Register 将后端定义加入全局注册表，重复键会返回错误。
func Register(def BackendDefinition) error {
	return globalRegistry.register(def)
}

// MustRegister 在注册失败时 panic，适合后端 init() 中调用。
func MustRegister(def BackendDefinition) {
	if err := Register(def); err != nil {
		panic(err)
	}
}

// Definitions 返回按 Order（其次按名字）排序的全部后端定义。
func Definitions() []BackendDefinition {
	return globalRegistry.definitions()
}

func (r *registry) register(def BackendDefinition) error {
	name := strings.ToLower(strings.TrimSpace(def.Name))
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	if def.Factory == nil {
		return fmt.Errorf("backend %s has no factory", name)
	}
	def.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend %s already registered", name)
	}
	r.backends[name] = def
	return nil
}

func (r *registry) definitions() []BackendDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]BackendDefinition, 0, len(r.backends))
	for _, def := range r.backends {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Name < result[j].Name
	})
	return result
}
