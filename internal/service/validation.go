package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/UserUmbasa/explore-with-me/internal/utils"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations 注册按去空白后字符数校验的自定义标签
// trimmed_min=N, trimmed_max=N
// gin 的绑定引擎也需注册同样的标签
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// 请求体按 json 名,查询参数按 form 名
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	if err := v.RegisterValidation("trimmed_min", trimmedLength(func(n, limit int) bool { return n >= limit })); err != nil {
		return err
	}
	return v.RegisterValidation("trimmed_max", trimmedLength(func(n, limit int) bool { return n <= limit }))
}

func trimmedLength(cmp func(n, limit int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return cmp(utils.TrimmedLen(fl.Field().String()), limit)
	}
}

// validateStruct 校验请求并转换为 ErrValidation
func validateStruct(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return validationError(errors.New(describeValidation(err)))
	}
	return nil
}

// BindingError 把 gin 绑定阶段的错误转换为 ErrValidation
func BindingError(err error) error {
	return validationError(errors.New(describeValidation(err)))
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeField(fe))
	}
	return strings.Join(parts, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field: %s. Error: must not be blank. Value: %v", field, fe.Value())
	case "trimmed_min", "min":
		return fmt.Sprintf("Field: %s. Error: must be at least %s characters. Value: %v", field, fe.Param(), fe.Value())
	case "trimmed_max", "max":
		return fmt.Sprintf("Field: %s. Error: must be at most %s characters. Value: %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("Field: %s. Error: must be greater than or equal to %s. Value: %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("Field: %s. Error: must be greater than %s. Value: %v", field, fe.Param(), fe.Value())
	case "email":
		return fmt.Sprintf("Field: %s. Error: must be a valid email. Value: %v", field, fe.Value())
	}
	return fmt.Sprintf("Field: %s. Error: failed on %s. Value: %v", field, fe.Tag(), fe.Value())
}

// checkField 把 utils 的字段校验错误转换为 ErrValidation
func checkField(err error) error {
	if err == nil {
		return nil
	}
	return validationError(err)
}

// Page 分页参数
type Page struct {
	From int
	Size int
}

// DefaultPage 默认分页
var DefaultPage = Page{From: 0, Size: 10}

func (p Page) validate() error {
	return checkField(utils.ValidatePage(p.From, p.Size))
}
