// Package validation 注册 gin 绑定所用校验器的自定义规则。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var setupOnce sync.Once

// Setup 为 gin 默认校验器注册 decimal 类型映射和 currency 规则，可重复调用
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Register(v)
	})
}

// Register 向校验器注册自定义规则
func Register(v *validator.Validate) {
	// 金额按 float64 参与 gt/gte 等数值规则
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return IsCurrencyCode(fl.Field().String())
	})
}

// IsCurrencyCode 三位大写字母的币种代码
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Describe 将绑定错误转换为可读提示
func Describe(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "参数错误: " + err.Error()
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describeField(fe))
	}
	return "参数错误: " + strings.Join(messages, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 为必填项", field)
	case "gt":
		return fmt.Sprintf("%s 必须大于 %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s 必须不小于 %s", field, fe.Param())
	case "lt", "lte", "max":
		return fmt.Sprintf("%s 必须不大于 %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 必须为 [%s] 之一", field, fe.Param())
	case "currency":
		return fmt.Sprintf("%s 必须为三位币种代码", field)
	case "datetime":
		return fmt.Sprintf("%s 日期格式应为 %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s 邮箱格式错误", field)
	default:
		return fmt.Sprintf("%s 校验失败(%s)", field, fe.Tag())
	}
}
