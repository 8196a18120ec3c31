package filters

import (
	"fmt"
	"sort"
	"sync"
)

// Registry 过滤器注册表，按标识保存工厂
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// globalRegistry 全局注册表实例
var globalRegistry = NewRegistry()

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register 注册过滤器到全局注册表
func Register(id string, factory Factory) error {
	return globalRegistry.Register(id, factory)
}

// Registered 全局注册表中的标识
func Registered() []string {
	return globalRegistry.IDs()
}

// Register 注册过滤器
func (r *Registry) Register(id string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" || factory == nil {
		return fmt.Errorf("invalid filter registration %q", id)
	}
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("filter %s already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// Get 按标识取工厂
func (r *Registry) Get(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// IDs 已注册标识，按字母序
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func init() {
	mustRegister(DefaultID, NewDefaultFilter)
	mustRegister(HTMLID, NewHTMLFilter)
	mustRegister(TableID, NewTableFilter)
}

func mustRegister(id string, factory Factory) {
	if err := Register(id, factory); err != nil {
		panic(err)
	}
}
