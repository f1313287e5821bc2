package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

type registry struct {
	mu    sync.RWMutex
	types map[Type]Metadata
}

func newRegistry() *registry {
	return &registry{types: make(map[Type]Metadata)}
}

// Register 将资源元数据加入全局注册表，重复类型会返回错误。
func Register(meta Metadata) error {
	return globalRegistry.register(meta)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(meta Metadata) {
	if err := Register(meta); err != nil {
		panic(err)
	}
}

// Resolve 返回指定类型的元数据，类型名大小写不敏感。
func Resolve(name string) (Metadata, bool) {
	return globalRegistry.resolve(name)
}

// List 返回按类型名排序的元数据列表。
func List() []Metadata {
	return globalRegistry.list()
}

// Names 返回所有已注册类型的名称，供配置校验和诊断使用。
func Names() []string {
	items := List()
	result := make([]string, len(items))
	for i, meta := range items {
		result[i] = string(meta.Type)
	}
	return result
}

// Normalize 统一类型名的大小写与空白。
func Normalize(name string) Type {
	return Type(strings.ToLower(strings.TrimSpace(name)))
}

func (r *registry) register(meta Metadata) error {
	key := Normalize(string(meta.Type))
	if key == "" {
		return fmt.Errorf("resource type is required")
	}
	if strings.ContainsAny(string(key), `/\`) {
		return fmt.Errorf("resource type %s must not contain path separators", key)
	}
	meta.Type = key
	if meta.Layout == "" {
		meta.Layout = LayoutFlat
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[key]; exists {
		return fmt.Errorf("resource %s already registered", key)
	}
	r.types[key] = meta
	return nil
}

func (r *registry) resolve(name string) (Metadata, bool) {
	key := Normalize(name)
	if key == "" {
		return Metadata{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.types[key]
	return meta, ok
}

func (r *registry) list() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.types) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.types))
	for key := range r.types {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	result := make([]Metadata, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.types[Type(key)])
	}
	return result
}
