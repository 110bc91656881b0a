package validator

// ============================================================================
// 规则引擎接口
// ============================================================================

// RuleSpec 单个属性的验证规则
// 对核心而言是不透明的数据：只会原样交给 Engine，从不在核心内部解释。
// 由规则引擎的构造函数产生（字符串、数字、邮箱、正则、备选等）。
type RuleSpec = any

// CompositeSchema 由一个类型的全部属性规则组合出的对象结构规则
// 每次验证时重新构建，不缓存，也不属于持久状态。
type CompositeSchema = any

// FieldRule 一条属性规则记录
type FieldRule struct {
	// Name 属性名（优先取名称标签，如 json 标签，用于错误消息）
	Name string
	// Field 结构体字段名（用于取值）
	Field string
	// Spec 属性规则
	Spec RuleSpec
}

// Result 验证结果
// Error 为 nil 表示验证通过；否则为规则引擎给出的描述性错误。
// Value 为被验证的实例（引擎做类型转换时为转换后的值）。
type Result struct {
	Error error
	Value any
}

// Valid 是否验证通过
func (r Result) Valid() bool {
	return r.Error == nil
}

// Engine 规则引擎
// 负责把属性规则打包成对象规则，并对实例执行检查。
// 字段值失败属于数据结果，写入 Result.Error，而不是 panic 或返回错误。
type Engine interface {
	// ObjectSchema 按声明顺序把属性规则打包为对象规则
	ObjectSchema(fields []FieldRule) CompositeSchema
	// Check 对实例执行对象规则检查
	Check(value any, schema CompositeSchema) Result
}

// TagParser 把结构体标签内容解析为属性规则
type TagParser func(tag string) (RuleSpec, error)
