package validator

import "sync"

// Metadata 单个类型的验证元数据
// 有序映射：属性 -> 规则，保持注解顺序；每个属性最多一条规则。
// Registry 返回的是同一个实例而非副本，后续注解对所有读取方可见。
type Metadata struct {
	mu     sync.RWMutex
	fields []FieldRule
	index  map[string]int // key: 结构体字段名
}

func newMetadata() *Metadata {
	return &Metadata{index: make(map[string]int)}
}

// Fields 返回按注解顺序排列的属性规则快照
func (m *Metadata) Fields() []FieldRule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields := make([]FieldRule, len(m.fields))
	copy(fields, m.fields)
	return fields
}

// Lookup 按结构体字段名查找属性规则
func (m *Metadata) Lookup(field string) (FieldRule, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[field]
	if !ok {
		return FieldRule{}, false
	}
	return m.fields[i], true
}

// Len 已注解的属性数量
func (m *Metadata) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fields)
}

// add 追加一条属性规则，属性已存在时返回 false
func (m *Metadata) add(rule FieldRule) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[rule.Field]; exists {
		return false
	}
	m.index[rule.Field] = len(m.fields)
	m.fields = append(m.fields, rule)
	return true
}
