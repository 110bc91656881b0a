package validator

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// defaultNameTag 默认的属性名称标签，错误消息中显示 json 字段名而不是结构体字段名
const defaultNameTag = "json"

// Registry 验证元数据注册表
// 职责：按类型身份（reflect.Type）保存有序的属性规则
// 设计原则：
//   - 只追加：元数据在首次注解时创建，进程生命周期内不删除
//   - 读写锁：允许运行期动态声明与并发验证同时发生
//   - 显式构造：测试可以创建相互隔离的注册表
type Registry struct {
	mu       sync.RWMutex
	metadata map[reflect.Type]*Metadata
	nameTag  string
	logger   *zap.Logger
}

// RegistryOption 注册表配置选项
type RegistryOption func(*Registry)

// WithNameTag 设置属性名称标签（默认 json），传空字符串表示始终使用结构体字段名
func WithNameTag(tag string) RegistryOption {
	return func(r *Registry) {
		r.nameTag = tag
	}
}

// WithRegistryLogger 设置注册表日志器
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

var (
	// defaultRegistry 全局注册表实例（单例）
	defaultRegistry *Registry
	// registryOnce 确保全局注册表只初始化一次
	registryOnce sync.Once
)

// DefaultRegistry 获取全局注册表
func DefaultRegistry() *Registry {
	registryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry 创建独立的注册表
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		metadata: make(map[reflect.Type]*Metadata),
		nameTag:  defaultNameTag,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get 获取类型的元数据，未注解过的类型返回 false
func (r *Registry) Get(class reflect.Type) (*Metadata, bool) {
	class = indirectType(class)
	if class == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	md, ok := r.metadata[class]
	return md, ok
}

// GetOrCreate 获取类型的元数据，不存在时创建空元数据并注册
func (r *Registry) GetOrCreate(class reflect.Type) *Metadata {
	class = indirectType(class)

	// 热路径：读锁
	r.mu.RLock()
	md, ok := r.metadata[class]
	r.mu.RUnlock()
	if ok {
		return md
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 双重检查，避免并发创建
	if md, ok = r.metadata[class]; ok {
		return md
	}
	md = newMetadata()
	r.metadata[class] = md
	return md
}

// Len 已注册的类型数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metadata)
}

// Types 返回已注册类型的快照（顺序不固定），用于诊断
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]reflect.Type, 0, len(r.metadata))
	for typ := range r.metadata {
		types = append(types, typ)
	}
	return types
}

// indirectType 解引用指针类型，*User 与 User 视为同一个类型
func indirectType(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}

// className 类型的显示名称
func className(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	if typ.Name() != "" {
		return typ.Name()
	}
	return typ.String()
}
