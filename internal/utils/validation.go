package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TrimmedLen 返回去除首尾空白后的字符数
func TrimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ValidateLength 校验去除首尾空白后的长度是否在 [min, max] 内
func ValidateLength(field, value string, min, max int) error {
	n := TrimmedLen(value)
	if n == 0 && min > 0 {
		return &ValidationError{
			Code:    "EMPTY_STRING",
			Field:   field,
			Message: fmt.Sprintf("field %s must not be blank", field),
		}
	}
	if n < min || n > max {
		return &ValidationError{
			Code:    "INVALID_LENGTH",
			Field:   field,
			Message: fmt.Sprintf("field %s must be between %d and %d characters, got %d", field, min, max, n),
		}
	}
	return nil
}

// ValidateNonNegative 校验整数非负
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return &ValidationError{
			Code:    "NEGATIVE_VALUE",
			Field:   field,
			Message: fmt.Sprintf("field %s must not be negative, got %d", field, value),
		}
	}
	return nil
}

// ValidatePage 校验分页参数
func ValidatePage(from, size int) error {
	if from < 0 {
		return &ValidationError{Code: "INVALID_PAGE", Field: "from", Message: "from must not be negative"}
	}
	if size < 1 {
		return &ValidationError{Code: "INVALID_PAGE", Field: "size", Message: "size must be positive"}
	}
	return nil
}

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
