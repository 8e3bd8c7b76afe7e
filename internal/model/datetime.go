package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout 接口层统一的时间格式(本地时间)
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime 以 yyyy-MM-dd HH:mm:ss 本地时间格式序列化的时间
type DateTime struct {
	time.Time
}

// NewDateTime 包装 time.Time
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// NewDateTimePtr 包装可空时间
func NewDateTimePtr(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	dt := NewDateTime(*t)
	return &dt
}

// ParseDateTime 按本地时区解析 yyyy-MM-dd HH:mm:ss
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date time %q, expected format %s", s, DateTimeLayout)
	}
	return t, nil
}

// FormatDateTime 按本地时区格式化
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(DateTimeLayout)
}

// MarshalJSON 实现 json.Marshaler
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(FormatDateTime(d.Time))
}

// UnmarshalJSON 实现 json.Unmarshaler
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date time must be a string: %w", err)
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
