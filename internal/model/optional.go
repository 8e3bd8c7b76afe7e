package model

import (
	"bytes"
	"encoding/json"
)

// Optional 稀疏更新字段: 未出现或为 null 时保持不变,出现时替换原值
type Optional[T any] struct {
	value T
	set   bool
}

// Set 构造已赋值的字段
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Unchanged 构造未赋值的字段
func Unchanged[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet 字段是否被赋值
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get 返回值及是否赋值
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Apply 字段被赋值时写入 dst
func (o Optional[T]) Apply(dst *T) {
	if o.set {
		*dst = o.value
	}
}

// UnmarshalJSON 实现 json.Unmarshaler, null 解码为未赋值
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{value: v, set: true}
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
