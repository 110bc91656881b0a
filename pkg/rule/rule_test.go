package rule_test

import (
	"errors"
	"regexp"
	"testing"

	playground "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-validation/pkg/rule"
	"katydid-common-validation/pkg/validator"
)

// holder 单属性测试模型
type holder struct {
	Value any
}

type named string

// check 用单个属性规则检查值，返回第一个失败信息
func check(t *testing.T, engine *rule.Engine, spec any, value any) *rule.Detail {
	t.Helper()

	schema := engine.ObjectSchema([]validator.FieldRule{{Name: "field", Field: "Value", Spec: spec}})
	result := engine.Check(&holder{Value: value}, schema)
	if result.Error == nil {
		return nil
	}

	var verr *rule.ValidationError
	require.True(t, errors.As(result.Error, &verr), "unexpected error: %v", result.Error)
	return verr.First()
}

// ============================================================================
// 1. 各类规则
// ============================================================================

func TestSchemas(t *testing.T) {
	engine := rule.NewEngine()

	tests := []struct {
		name     string
		spec     any
		value    any
		wantType string
		wantMsg  string
	}{
		// 字符串
		{name: "字符串通过", spec: rule.String().Min(3), value: "abc"},
		{name: "命名字符串类型", spec: rule.String(), value: named("abc")},
		{name: "非字符串", spec: rule.String(), value: 1, wantType: "string.base", wantMsg: `"field" must be a string`},
		{name: "空字符串", spec: rule.String(), value: "", wantType: "any.empty", wantMsg: `"field" is not allowed to be empty`},
		{name: "允许空字符串", spec: rule.String().Allow(""), value: ""},
		{name: "长度按字符计", spec: rule.String().Max(2), value: "你好"},
		{name: "固定长度", spec: rule.String().Length(4), value: "abc", wantType: "string.length", wantMsg: `"field" length must be 4 characters long`},
		{name: "小写", spec: rule.String().Lowercase(), value: "Abc", wantType: "string.lowercase"},
		{name: "URI", spec: rule.String().URI(), value: "not a uri", wantType: "string.uri", wantMsg: `"field" must be a valid uri`},
		{name: "URI 通过", spec: rule.String().URI(), value: "https://example.com/a"},
		{name: "已编译正则", spec: rule.String().Pattern(regexp.MustCompile(`^\d+$`)), value: "12a", wantType: "string.regex.base"},
		{name: "有效值列表", spec: rule.String().Valid("a", "b"), value: "c", wantType: "any.allowOnly", wantMsg: `"field" must be one of [a, b]`},
		{name: "无效值列表", spec: rule.String().Invalid("admin"), value: "admin", wantType: "any.invalid", wantMsg: `"field" contains an invalid value`},
		{name: "检查按添加顺序执行", spec: rule.String().Max(2).Alphanum(), value: "a!b", wantType: "string.max"},

		// 数字
		{name: "整数通过", spec: rule.Number().Integer().Min(1), value: 3},
		{name: "无符号整数", spec: rule.Number().Max(10), value: uint8(7)},
		{name: "非数字", spec: rule.Number(), value: "12", wantType: "number.base", wantMsg: `"field" must be a number`},
		{name: "非整数", spec: rule.Number().Integer(), value: 1.5, wantType: "number.integer", wantMsg: `"field" must be an integer`},
		{name: "小于最小值", spec: rule.Number().Min(1900), value: 1899, wantType: "number.min", wantMsg: `"field" must be larger than or equal to 1900`},
		{name: "小数参数", spec: rule.Number().Max(0.5), value: 0.75, wantType: "number.max", wantMsg: `"field" must be less than or equal to 0.5`},
		{name: "正数", spec: rule.Number().Positive(), value: 0, wantType: "number.positive"},
		{name: "数字有效值按数值比较", spec: rule.Number().Valid(1, 2), value: int64(2)},

		// 布尔与任意值
		{name: "布尔通过", spec: rule.Boolean(), value: false},
		{name: "非布尔", spec: rule.Boolean(), value: "true", wantType: "boolean.base", wantMsg: `"field" must be a boolean`},
		{name: "任意值", spec: rule.Any(), value: struct{}{}},
		{name: "任意值必填", spec: rule.Any().Required(), value: nil, wantType: "any.required", wantMsg: `"field" is required`},

		// 备选
		{name: "备选切片", spec: []rule.Schema{rule.String(), rule.Number()}, value: 1},
		{name: "备选失败", spec: rule.Alternatives(rule.String(), rule.Number()), value: true, wantType: "alternatives.base"},
		{name: "备选必填", spec: rule.Alternatives(rule.String()).Required(), value: nil, wantType: "any.required"},

		// 标签
		{name: "标签通过", spec: "required,email", value: "a@b.co"},
		{name: "标签失败", spec: rule.Tag("min=3"), value: "ab", wantType: "tag.min", wantMsg: `"field" failed on the "min" rule with param "3"`},
		{name: "标签必填", spec: "required", value: nil, wantType: "any.required"},
		{name: "标签可选", spec: "omitempty,email", value: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := check(t, engine, tt.spec, tt.value)
			if tt.wantType == "" {
				assert.Nil(t, d)
				return
			}
			require.NotNil(t, d)
			assert.Equal(t, tt.wantType, d.Type)
			assert.Equal(t, "field", d.Path)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, d.Message)
			}
		})
	}
}

func TestSchemas_AbsentValues(t *testing.T) {
	engine := rule.NewEngine()
	var nilString *string

	assert.Nil(t, check(t, engine, rule.String(), nil), "optional by default")
	assert.Nil(t, check(t, engine, rule.String().Required().Optional(), nilString))

	d := check(t, engine, rule.String().Required(), nilString)
	require.NotNil(t, d)
	assert.Equal(t, "any.required", d.Type)

	present := "abc"
	assert.Nil(t, check(t, engine, rule.String().Required(), &present), "pointers are dereferenced")
}

// ============================================================================
// 2. 引擎
// ============================================================================

func TestEngine_InvalidSchemas(t *testing.T) {
	engine := rule.NewEngine()

	tests := []struct {
		name string
		spec any
	}{
		{name: "不支持的类型", spec: 42},
		{name: "nil", spec: nil},
		{name: "nil 指针", spec: (*rule.StringSchema)(nil)},
		{name: "空备选", spec: []rule.Schema{}},
		{name: "空标签", spec: ""},
		{name: "未注册的标签", spec: "definitely_not_a_tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := engine.ObjectSchema([]validator.FieldRule{{Name: "field", Field: "Value", Spec: tt.spec}})
			result := engine.Check(&holder{Value: "x"}, schema)
			assert.ErrorIs(t, result.Error, rule.ErrInvalidSchema)
		})
	}

	t.Run("不是对象规则", func(t *testing.T) {
		result := engine.Check(&holder{}, "not a schema")
		assert.ErrorIs(t, result.Error, rule.ErrInvalidSchema)
	})
}

func TestEngine_NonStructValues(t *testing.T) {
	engine := rule.NewEngine()
	schema := engine.ObjectSchema([]validator.FieldRule{{Name: "field", Field: "Value", Spec: rule.String()}})

	result := engine.Check(42, schema)
	var verr *rule.ValidationError
	require.True(t, errors.As(result.Error, &verr))
	assert.Equal(t, "object.base", verr.First().Type)

	var nilHolder *holder
	result = engine.Check(nilHolder, schema)
	require.True(t, errors.As(result.Error, &verr))
	assert.Equal(t, "any.required", verr.First().Type)
}

func TestEngine_MissingFieldIsAbsent(t *testing.T) {
	engine := rule.NewEngine()
	schema := engine.ObjectSchema([]validator.FieldRule{{Name: "other", Field: "Other", Spec: rule.String().Required()}})

	result := engine.Check(holder{Value: "x"}, schema)
	assert.EqualError(t, result.Error, `child "other" fails because ["other" is required]`)
}

func TestEngine_RegisterValidation(t *testing.T) {
	engine := rule.NewEngine()
	require.NoError(t, engine.RegisterValidation("even", func(fl playground.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}))

	assert.Nil(t, check(t, engine, "even", 4))

	d := check(t, engine, "even", 3)
	require.NotNil(t, d)
	assert.Equal(t, "tag.even", d.Type)
}

func TestEngine_WithPlayground(t *testing.T) {
	pg := playground.New()
	engine := rule.NewEngine(rule.WithPlayground(pg))
	assert.Same(t, pg, engine.Playground())
}

func TestValidationError(t *testing.T) {
	err := &rule.ValidationError{Details: []*rule.Detail{
		{Path: "a", Message: `"a" is required`},
		{Path: "b", Message: `"b" must be a string`},
	}}

	assert.Equal(t, `child "a" fails because ["a" is required]. child "b" fails because ["b" must be a string]`, err.Error())
	assert.True(t, err.Has("b"))
	assert.False(t, err.Has("c"))
	assert.Equal(t, "a", err.First().Path)

	empty := &rule.ValidationError{}
	assert.Equal(t, "validation failed", empty.Error())
	assert.Nil(t, empty.First())
}

func TestParseTag(t *testing.T) {
	spec, err := rule.ParseTag(" required,email ")
	require.NoError(t, err)

	tag, ok := spec.(*rule.TagSchema)
	require.True(t, ok)
	assert.Equal(t, "required,email", tag.Expr())

	_, err = rule.ParseTag("")
	assert.ErrorIs(t, err, rule.ErrInvalidSchema)
}

func TestAlternatives_Detail(t *testing.T) {
	engine := rule.NewEngine()
	tokens := []rule.Schema{rule.String(), rule.Number()}

	d := check(t, engine, tokens, true)
	require.NotNil(t, d)
	assert.Equal(t, "alternatives.base", d.Type)
	assert.Equal(t, "string, number", d.Param)
	assert.Equal(t, `"field" not matching any of the allowed alternatives`, d.Message)

	// 字符串备选默认不接受空字符串
	d = check(t, engine, tokens, "")
	require.NotNil(t, d)
	assert.Equal(t, "alternatives.base", d.Type)

	assert.Nil(t, check(t, engine, []rule.Schema{rule.String().Allow(""), rule.Number()}, ""))
}
