// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
//
// 所有结构体使用 `rule` 标签，gin 的 ShouldBind 与配置校验共用同一个引擎.
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagName 校验规则使用的结构体标签名.
const TagName = "rule"

var (
	inst *validator.Validate
	once sync.Once

	// uploadExtPattern 文件扩展名只允许字母、数字与下划线，不含点号.
	uploadExtPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName(TagName)
	inst.RegisterTagNameFunc(jsonFieldName)

	// 内置规则只在初始化时注册一次
	_ = inst.RegisterValidation("upload_ext", validateUploadExt)
}

// jsonFieldName 错误信息中使用 json 字段名.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return fld.Name
	}

	return name
}

func validateUploadExt(fl validator.FieldLevel) bool {
	return uploadExtPattern.MatchString(fl.Field().String())
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

// ValidationErrors 是格式化后的验证错误字典，键为字段名，值为可读错误信息.
type ValidationErrors map[string]string

// Errors 把 validator 返回的错误整理为字段到信息的映射；非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
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

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("png", "omitempty,max=32,upload_ext").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
