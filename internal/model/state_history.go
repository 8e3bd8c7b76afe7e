package model

import (
	"errors"
	"time"
)

// EventStateHistoryModel 事件状态变更历史数据模型
type EventStateHistoryModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	EventID   int64      `gorm:"not null;index:idx_history_event_id"`
	FromState EventState `gorm:"type:varchar(16)"`
	ToState   EventState `gorm:"type:varchar(16);not null"`
	Action    string     `gorm:"type:varchar(32);not null"`
	Operator  string     `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time  `gorm:"not null"`
}

// TableName 指定表名
func (EventStateHistoryModel) TableName() string {
	return "event_state_history"
}

// Validate 验证状态历史模型
func (h *EventStateHistoryModel) Validate() error {
	if h.EventID <= 0 {
		return errors.New("event ID is required")
	}
	if h.ToState == "" {
		return errors.New("to state is required")
	}
	if h.Action == "" {
		return errors.New("action is required")
	}
	if h.Operator == "" {
		return errors.New("operator is required")
	}
	return nil
}
