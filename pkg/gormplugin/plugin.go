// Package gormplugin 在 gorm 写入前按注册表中的规则验证模型。
package gormplugin

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"katydid-common-validation/pkg/validator"
)

// 回调名称
const (
	pluginName       = "katydid:validation"
	createCallback   = "katydid:validate_create"
	updateCallback   = "katydid:validate_update"
	gormCreateAnchor = "gorm:create"
	gormUpdateAnchor = "gorm:update"
)

// ErrInvalidModel 模型未通过验证，写入被取消
var ErrInvalidModel = errors.New("model validation failed")

// Plugin gorm 验证插件
// 在 gorm:create 与 gorm:update 之前验证 Statement.Dest，
// 没有注解的模型直接跳过，失败时通过 db.AddError 终止写入。
// 结构体形式的 Updates 只验证 gorm 会写入的字段。
type Plugin struct {
	validator *validator.Validator
	logger    *zap.Logger
}

// Option 插件配置选项
type Option func(*Plugin)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New 创建验证插件
func New(v *validator.Validator, opts ...Option) *Plugin {
	p := &Plugin{validator: v, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name 实现 gorm.Plugin
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize 实现 gorm.Plugin，注册写入前回调
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before(gormCreateAnchor).Register(createCallback, p.validate); err != nil {
		return fmt.Errorf("register %s: %w", createCallback, err)
	}
	if err := db.Callback().Update().Before(gormUpdateAnchor).Register(updateCallback, p.validateUpdate); err != nil {
		return fmt.Errorf("register %s: %w", updateCallback, err)
	}
	return nil
}

// validate 验证写入目标，支持结构体、指针与切片
func (p *Plugin) validate(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil {
		return
	}
	if err := p.validateValue(reflect.ValueOf(db.Statement.Dest)); err != nil {
		p.logger.Debug("model rejected",
			zap.String("table", db.Statement.Table),
			zap.Error(err),
		)
		_ = db.AddError(err)
	}
}

// validateUpdate 更新前验证
// Save 时 Dest 就是模型本身，按全部规则验证；
// Updates(struct) 时 Dest 只携带要写入的字段，只验证这些字段。
func (p *Plugin) validateUpdate(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil {
		return
	}
	stmt := db.Statement
	if stmt.Model == nil || samePointer(stmt.Model, stmt.Dest) {
		p.validate(db)
		return
	}

	dest := reflect.ValueOf(stmt.Dest)
	for dest.IsValid() && dest.Kind() == reflect.Ptr {
		if dest.IsNil() {
			return
		}
		dest = dest.Elem()
	}
	if dest.Kind() != reflect.Struct {
		// map 形式的 Updates 与 Update(column, value) 不验证
		return
	}

	fields, all := updatedFields(stmt, dest)
	var err error
	if all {
		err = p.validateValue(dest)
	} else {
		err = p.report(p.validator.ValidateFields(dest.Interface(), fields...))
	}
	if err != nil {
		p.logger.Debug("update rejected",
			zap.String("table", stmt.Table),
			zap.Strings("fields", fields),
			zap.Error(err),
		)
		_ = db.AddError(err)
	}
}

// updatedFields gorm 会从结构体写入的字段名
// 有 Select 时取选中的字段（"*" 表示全部，all 为 true），否则取非零值字段；Omit 的字段排除。
func updatedFields(stmt *gorm.Statement, dest reflect.Value) (fields []string, all bool) {
	omitted := make(map[string]struct{}, len(stmt.Omits))
	for _, name := range stmt.Omits {
		omitted[fieldName(stmt, name)] = struct{}{}
	}

	if len(stmt.Selects) > 0 {
		for _, name := range stmt.Selects {
			if name == "*" {
				if len(omitted) == 0 {
					return nil, true
				}
				return structFields(dest, omitted, false), false
			}
			if field := fieldName(stmt, name); !isOmitted(omitted, field) {
				fields = append(fields, field)
			}
		}
		return fields, false
	}

	return structFields(dest, omitted, true), false
}

// structFields 结构体的导出字段名，nonZero 为 true 时只取非零值字段
func structFields(dest reflect.Value, omitted map[string]struct{}, nonZero bool) []string {
	var fields []string
	for _, sf := range reflect.VisibleFields(dest.Type()) {
		if !sf.IsExported() || sf.Anonymous || isOmitted(omitted, sf.Name) {
			continue
		}
		fv, err := dest.FieldByIndexErr(sf.Index)
		if err != nil || (nonZero && fv.IsZero()) {
			continue
		}
		fields = append(fields, sf.Name)
	}
	return fields
}

// fieldName 把 Select/Omit 中的列名或字段名统一为结构体字段名
func fieldName(stmt *gorm.Statement, name string) string {
	if stmt.Schema != nil {
		if field := stmt.Schema.LookUpField(name); field != nil {
			return field.Name
		}
	}
	return name
}

func isOmitted(omitted map[string]struct{}, field string) bool {
	_, ok := omitted[field]
	return ok
}

// samePointer 两个值是否指向同一个对象
func samePointer(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	return va.Kind() == reflect.Ptr && vb.Kind() == reflect.Ptr && va.Pointer() == vb.Pointer()
}

// report 把验证结果转换为写入错误，没有注解的模型视为通过
func (p *Plugin) report(result validator.Result, err error) error {
	if err != nil {
		if errors.Is(err, validator.ErrNoMetadataFound) {
			return nil
		}
		return err
	}
	if result.Error != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, result.Error)
	}
	return nil
}

func (p *Plugin) validateValue(v reflect.Value) error {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := p.validateValue(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		return p.report(p.validator.Validate(v.Interface()))
	default:
		return nil
	}
}
