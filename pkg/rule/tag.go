package rule

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// TagSchema go-playground/validator 标签规则
// 例如 Tag("required,email")、Tag("omitempty,min=3,max=30")。
// 未注册的标签在验证时返回 ErrInvalidSchema。
type TagSchema struct {
	expr     string
	required bool
}

// Tag 创建标签规则
func Tag(expr string) *TagSchema {
	return &TagSchema{
		expr:     expr,
		required: hasRequiredTag(expr),
	}
}

// ParseTag 把结构体标签解析为标签规则，可作为 validator.TagParser 使用
func ParseTag(tag string) (any, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: empty tag", ErrInvalidSchema)
	}
	return Tag(tag), nil
}

// Type 实现 Schema 接口
func (t *TagSchema) Type() string { return "tag" }

// Expr 标签表达式
func (t *TagSchema) Expr() string { return t.expr }

// check 实现 Schema 接口
func (t *TagSchema) check(c *checker, label string, v reflect.Value) *Detail {
	v = indirect(v)
	if !v.IsValid() {
		if t.required {
			return newDetail(label, "any.required", "", nil, "is required")
		}
		return nil
	}

	err := c.playground.Var(v.Interface(), t.expr)
	if err == nil {
		return nil
	}

	var fieldErrors playground.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		panic(fmt.Sprintf("tag %q: %v", t.expr, err))
	}

	fe := fieldErrors[0]
	if fe.Param() != "" {
		return newDetail(label, "tag."+fe.Tag(), fe.Param(), v.Interface(),
			"failed on the %q rule with param %q", fe.Tag(), fe.Param())
	}
	return newDetail(label, "tag."+fe.Tag(), "", v.Interface(), "failed on the %q rule", fe.Tag())
}

// hasRequiredTag 标签表达式是否包含 required
func hasRequiredTag(expr string) bool {
	for _, part := range strings.Split(expr, ",") {
		if strings.TrimSpace(part) == "required" {
			return true
		}
	}
	return false
}
