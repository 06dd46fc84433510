package v1

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息使用 json 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationMessages 将校验错误转换为面向用户的提示
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		// 去掉根结构体名
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", field))
		case "min":
			out = append(out, fmt.Sprintf("%s must contain at least %s item(s)", field, e.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s validation", field, e.Tag()))
		}
	}
	return out
}
