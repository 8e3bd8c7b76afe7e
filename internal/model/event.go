package model

import (
	"errors"
	"time"
)

// EventState 事件状态
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// Valid 判断状态取值是否合法
func (s EventState) Valid() bool {
	switch s {
	case EventStatePending, EventStatePublished, EventStateCanceled:
		return true
	}
	return false
}

// EventModel 事件数据模型
// ConfirmedRequests 和 Views 为派生字段,只在读取路径上由 Enricher 填充,不落库
type EventModel struct {
	ID                int64         `gorm:"primaryKey;autoIncrement"`
	Title             string        `gorm:"type:varchar(120);not null"`
	Annotation        string        `gorm:"type:varchar(2000);not null"`
	Description       string        `gorm:"type:varchar(7000);not null"`
	CategoryID        int64         `gorm:"not null;index:idx_events_category_id"`
	Category          CategoryModel `gorm:"foreignKey:CategoryID"`
	InitiatorID       int64         `gorm:"not null;index:idx_events_initiator_id"`
	Initiator         UserModel     `gorm:"foreignKey:InitiatorID"`
	EventDate         time.Time     `gorm:"not null;index:idx_events_event_date"`
	LocationLat       float64       `gorm:"not null"`
	LocationLon       float64       `gorm:"not null"`
	Paid              bool          `gorm:"not null"`
	ParticipantLimit  int           `gorm:"not null"`
	RequestModeration bool          `gorm:"not null"`
	State             EventState    `gorm:"type:varchar(16);not null;index:idx_events_state"`
	CreatedOn         time.Time     `gorm:"not null"`
	PublishedOn       *time.Time

	ConfirmedRequests int64 `gorm:"-"`
	Views             int64 `gorm:"-"`
}

// TableName 指定表名
func (EventModel) TableName() string {
	return "events"
}

// URI 返回事件在统计服务中的 URI
func (e *EventModel) URI() string {
	return EventURI(e.ID)
}

// Available 判断事件是否还有空余名额
func (e *EventModel) Available() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < int64(e.ParticipantLimit)
}

// Validate 验证事件模型
func (e *EventModel) Validate() error {
	if e.Title == "" {
		return errors.New("event title is required")
	}
	if e.CategoryID <= 0 {
		return errors.New("event category is required")
	}
	if e.InitiatorID <= 0 {
		return errors.New("event initiator is required")
	}
	if e.ParticipantLimit < 0 {
		return errors.New("participant limit must not be negative")
	}
	if !e.State.Valid() {
		return errors.New("event state is invalid")
	}
	if e.State == EventStatePublished {
		if e.PublishedOn == nil {
			return errors.New("published event must have publishedOn")
		}
		if e.EventDate.Before(e.PublishedOn.Add(time.Hour)) {
			return errors.New("published event must start at least one hour after publication")
		}
	}
	return nil
}
