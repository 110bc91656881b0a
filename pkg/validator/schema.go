package validator

// Compose 由类型元数据组合出对象规则
// 只是把属性规则快照原样交给引擎的对象规则构造函数，没有注解的属性不受约束。
// 本步骤没有失败情况，规则本身的问题在引擎检查时才会暴露。
func Compose(engine Engine, md *Metadata) CompositeSchema {
	return engine.ObjectSchema(md.Fields())
}

// ComposeFields 只由指定字段（结构体字段名）的规则组合对象规则
// 不在元数据中的字段名被忽略，规则顺序仍按注解顺序。
func ComposeFields(engine Engine, md *Metadata, fields []string) CompositeSchema {
	wanted := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		wanted[field] = struct{}{}
	}

	all := md.Fields()
	selected := make([]FieldRule, 0, len(fields))
	for _, rule := range all {
		if _, ok := wanted[rule.Field]; ok {
			selected = append(selected, rule)
		}
	}
	return engine.ObjectSchema(selected)
}
