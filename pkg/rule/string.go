package rule

import (
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// stringCheck 字符串规则中的单项检查
type stringCheck func(c *checker, label, s string) *Detail

// StringSchema 字符串规则
// 空字符串默认不允许，需要时使用 Allow("")。
// 各项检查按添加顺序执行，遇到第一个失败即停止。
type StringSchema struct {
	presence
	checks []stringCheck
}

// String 创建字符串规则
func String() *StringSchema {
	return &StringSchema{}
}

// Type 实现 Schema 接口
func (s *StringSchema) Type() string { return "string" }

// Required 属性必须存在
func (s *StringSchema) Required() *StringSchema {
	s.required = true
	return s
}

// Optional 属性可以不存在（默认）
func (s *StringSchema) Optional() *StringSchema {
	s.required = false
	return s
}

// Allow 允许的特殊值，命中时跳过其他检查
func (s *StringSchema) Allow(values ...any) *StringSchema {
	s.allow = append(s.allow, values...)
	return s
}

// Valid 只允许列出的值
func (s *StringSchema) Valid(values ...any) *StringSchema {
	s.valid = append(s.valid, values...)
	return s
}

// Invalid 禁止列出的值
func (s *StringSchema) Invalid(values ...any) *StringSchema {
	s.invalid = append(s.invalid, values...)
	return s
}

// Min 最小长度（按字符计）
func (s *StringSchema) Min(limit int) *StringSchema {
	return s.add(func(_ *checker, label, value string) *Detail {
		if utf8.RuneCountInString(value) < limit {
			return newDetail(label, "string.min", strconv.Itoa(limit), value,
				"length must be at least %d characters long", limit)
		}
		return nil
	})
}

// Max 最大长度（按字符计）
func (s *StringSchema) Max(limit int) *StringSchema {
	return s.add(func(_ *checker, label, value string) *Detail {
		if utf8.RuneCountInString(value) > limit {
			return newDetail(label, "string.max", strconv.Itoa(limit), value,
				"length must be less than or equal to %d characters long", limit)
		}
		return nil
	})
}

// Length 固定长度（按字符计）
func (s *StringSchema) Length(limit int) *StringSchema {
	return s.add(func(_ *checker, label, value string) *Detail {
		if utf8.RuneCountInString(value) != limit {
			return newDetail(label, "string.length", strconv.Itoa(limit), value,
				"length must be %d characters long", limit)
		}
		return nil
	})
}

// Alphanum 只能包含字母和数字
func (s *StringSchema) Alphanum() *StringSchema {
	return s.add(func(c *checker, label, value string) *Detail {
		if !c.tag(value, "alphanum") {
			return newDetail(label, "string.alphanum", "", value, "must only contain alpha-numeric characters")
		}
		return nil
	})
}

// Email 必须是有效的邮箱地址
func (s *StringSchema) Email() *StringSchema {
	return s.add(func(c *checker, label, value string) *Detail {
		if !c.tag(value, "email") {
			return newDetail(label, "string.email", "", value, "must be a valid email")
		}
		return nil
	})
}

// URI 必须是有效的 URI
func (s *StringSchema) URI() *StringSchema {
	return s.add(func(c *checker, label, value string) *Detail {
		if !c.tag(value, "uri") {
			return newDetail(label, "string.uri", "", value, "must be a valid uri")
		}
		return nil
	})
}

// Lowercase 只能包含小写字母
func (s *StringSchema) Lowercase() *StringSchema {
	return s.add(func(c *checker, label, value string) *Detail {
		if !c.tag(value, "lowercase") {
			return newDetail(label, "string.lowercase", "", value, "must only contain lowercase characters")
		}
		return nil
	})
}

// Regex 必须匹配正则表达式，表达式不合法时 panic
func (s *StringSchema) Regex(pattern string) *StringSchema {
	return s.Pattern(regexp.MustCompile(pattern))
}

// Pattern 必须匹配已编译的正则表达式
func (s *StringSchema) Pattern(re *regexp.Regexp) *StringSchema {
	pattern := "/" + re.String() + "/"
	return s.add(func(_ *checker, label, value string) *Detail {
		if !re.MatchString(value) {
			return newDetail(label, "string.regex.base", pattern, value,
				"with value %q fails to match the required pattern: %s", value, pattern)
		}
		return nil
	})
}

func (s *StringSchema) add(check stringCheck) *StringSchema {
	s.checks = append(s.checks, check)
	return s
}

// check 实现 Schema 接口
func (s *StringSchema) check(c *checker, label string, v reflect.Value) *Detail {
	v = indirect(v)
	if done, d := s.precheck(label, v); done {
		return d
	}

	if v.Kind() != reflect.String {
		return newDetail(label, "string.base", "", v.Interface(), "must be a string")
	}

	value := v.String()
	if value == "" {
		return newDetail(label, "any.empty", "", value, "is not allowed to be empty")
	}

	for _, check := range s.checks {
		if d := check(c, label, value); d != nil {
			return d
		}
	}
	return nil
}
