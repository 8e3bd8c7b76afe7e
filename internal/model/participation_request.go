package model

import "time"

// RequestStatus 参与申请状态
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequestModel 参与申请数据模型
// 本服务只读取已确认申请的数量
type ParticipationRequestModel struct {
	ID          int64         `gorm:"primaryKey;autoIncrement"`
	EventID     int64         `gorm:"not null;index:idx_requests_event_status,priority:1"`
	RequesterID int64         `gorm:"not null"`
	Status      RequestStatus `gorm:"type:varchar(16);not null;index:idx_requests_event_status,priority:2"`
	Created     time.Time     `gorm:"not null"`
}

// TableName 指定表名
func (ParticipationRequestModel) TableName() string {
	return "participation_requests"
}
