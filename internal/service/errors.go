package service

import (
	"errors"
	"fmt"

	"github.com/UserUmbasa/explore-with-me/internal/database"
	"gorm.io/gorm"
)

// 错误类别,通过 errors.Is 判断
var (
	ErrNotFound        = errors.New("not found")
	ErrNoAccess        = errors.New("no access")
	ErrConditionNotMet = errors.New("condition not met")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

// Error 带类别的业务错误
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回错误类别
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id int64) *Error {
	return newError(ErrNotFound, "%s with id=%d was not found", entity, id)
}

func noAccess(format string, args ...interface{}) *Error {
	return newError(ErrNoAccess, format, args...)
}

func conditionNotMet(format string, args ...interface{}) *Error {
	return newError(ErrConditionNotMet, format, args...)
}

func invalidRequest(format string, args ...interface{}) *Error {
	return newError(ErrInvalidRequest, format, args...)
}

func validationError(err error) *Error {
	return &Error{Kind: ErrValidation, Message: err.Error()}
}

// storeError 把仓储错误转换为业务错误,未识别的错误原样包装
func storeError(err error, entity string, id int64) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(entity, id)
	case database.IsUniqueViolation(err):
		return newError(ErrConflict, "%s violates a uniqueness constraint", entity)
	case database.IsForeignKeyViolation(err):
		return newError(ErrConflict, "%s is still referenced", entity)
	}
	return fmt.Errorf("failed to access %s: %w", entity, err)
}
