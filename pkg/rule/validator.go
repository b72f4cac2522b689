// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
// 校验规则写在 `rule:"..."` 标签中，gin 的绑定校验也共用同一个引擎.
package rule

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建，并注册自定义规则.
func initValidator() {
	inst = nil

	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName("rule")

	_ = inst.RegisterValidation("mimeprefix", isMIMEPrefix)
	_ = inst.RegisterValidation("filename", isFileName)
}

// isMIMEPrefix 校验形如 "image/" 的 MIME 顶级类型前缀.
func isMIMEPrefix(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	top, rest, ok := strings.Cut(s, "/")

	return ok && rest == "" && top != "" && !strings.ContainsAny(top, " ;*")
}

// isFileName 校验显示名：合法 UTF-8、非空、不含路径分隔符与控制字符.
func isFileName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) || strings.TrimSpace(s) == "" || s == "." || s == ".." {
		return false
	}

	return !strings.ContainsFunc(s, func(r rune) bool {
		return r == '/' || r == '\\' || r < 0x20 || r == 0x7f
	})
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段命名空间，值为未通过的规则.
type ValidationErrors map[string]string

// Errors 把 ValidateStruct 返回的错误展开为字典；非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out[fe.Namespace()] = msg
	}

	return out
}

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}
