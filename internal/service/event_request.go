package service

import (
	"strings"

	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/utils"
)

// UserStateAction 发起人可执行的状态动作
type UserStateAction string

const (
	SendToReview UserStateAction = "SEND_TO_REVIEW"
	CancelReview UserStateAction = "CANCEL_REVIEW"
)

// AdminStateAction 管理员可执行的状态动作
type AdminStateAction string

const (
	PublishEvent AdminStateAction = "PUBLISH_EVENT"
	RejectEvent  AdminStateAction = "REJECT_EVENT"
)

// actionCreate 创建事件时写入状态历史的动作名
const actionCreate = "CREATE"

// NewEventRequest 创建事件请求
type NewEventRequest struct {
	Title             string         `json:"title" binding:"required,trimmed_min=3,trimmed_max=120"`
	Annotation        string         `json:"annotation" binding:"required,trimmed_min=20,trimmed_max=2000"`
	Description       string         `json:"description" binding:"required,trimmed_min=20,trimmed_max=7000"`
	CategoryID        int64          `json:"category" binding:"required,gt=0"`
	EventDate         model.DateTime `json:"eventDate"`
	Location          *Location      `json:"location" binding:"required"`
	Paid              *bool          `json:"paid"`
	ParticipantLimit  *int           `json:"participantLimit" binding:"omitempty,gte=0"`
	RequestModeration *bool          `json:"requestModeration"`
}

func (r *NewEventRequest) validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.EventDate.IsZero() {
		return validationError(&utils.ValidationError{Code: "REQUIRED", Field: "eventDate", Message: "Field: eventDate. Error: must not be blank. Value: null"})
	}
	return nil
}

// toModel 按默认值构造事件: paid=false, participantLimit=0, requestModeration=true
func (r *NewEventRequest) toModel() *model.EventModel {
	e := &model.EventModel{
		Title:             strings.TrimSpace(r.Title),
		Annotation:        strings.TrimSpace(r.Annotation),
		Description:       strings.TrimSpace(r.Description),
		CategoryID:        r.CategoryID,
		EventDate:         r.EventDate.Time,
		LocationLat:       r.Location.Lat,
		LocationLon:       r.Location.Lon,
		RequestModeration: true,
		State:             model.EventStatePending,
	}
	if r.Paid != nil {
		e.Paid = *r.Paid
	}
	if r.ParticipantLimit != nil {
		e.ParticipantLimit = *r.ParticipantLimit
	}
	if r.RequestModeration != nil {
		e.RequestModeration = *r.RequestModeration
	}
	return e
}

// EventPatch 事件的稀疏更新字段
// 未出现或为 null 的字段保持原值
type EventPatch struct {
	Title             model.Optional[string]         `json:"title"`
	Annotation        model.Optional[string]         `json:"annotation"`
	Description       model.Optional[string]         `json:"description"`
	EventDate         model.Optional[model.DateTime] `json:"eventDate"`
	Location          model.Optional[Location]       `json:"location"`
	Paid              model.Optional[bool]           `json:"paid"`
	ParticipantLimit  model.Optional[int]            `json:"participantLimit"`
	RequestModeration model.Optional[bool]           `json:"requestModeration"`
}

func (p *EventPatch) validate() error {
	if v, ok := p.Title.Get(); ok {
		if err := utils.ValidateLength("title", v, 3, 120); err != nil {
			return validationError(err)
		}
	}
	if v, ok := p.Annotation.Get(); ok {
		if err := utils.ValidateLength("annotation", v, 20, 2000); err != nil {
			return validationError(err)
		}
	}
	if v, ok := p.Description.Get(); ok {
		if err := utils.ValidateLength("description", v, 20, 7000); err != nil {
			return validationError(err)
		}
	}
	if v, ok := p.ParticipantLimit.Get(); ok {
		if err := utils.ValidateNonNegative("participantLimit", v); err != nil {
			return validationError(err)
		}
	}
	return nil
}

// apply 合并除开始时间以外的字段,开始时间需要先按状态校验
func (p *EventPatch) apply(e *model.EventModel) {
	if v, ok := p.Title.Get(); ok {
		e.Title = strings.TrimSpace(v)
	}
	if v, ok := p.Annotation.Get(); ok {
		e.Annotation = strings.TrimSpace(v)
	}
	if v, ok := p.Description.Get(); ok {
		e.Description = strings.TrimSpace(v)
	}
	if loc, ok := p.Location.Get(); ok {
		e.LocationLat = loc.Lat
		e.LocationLon = loc.Lon
	}
	p.Paid.Apply(&e.Paid)
	p.ParticipantLimit.Apply(&e.ParticipantLimit)
	p.RequestModeration.Apply(&e.RequestModeration)
}

// UpdateEventUserRequest 发起人更新事件请求
type UpdateEventUserRequest struct {
	EventPatch
	CategoryID  model.Optional[int64] `json:"category"`
	StateAction UserStateAction       `json:"stateAction"`
}

// UpdateEventAdminRequest 管理员更新事件请求
type UpdateEventAdminRequest struct {
	EventPatch
	StateAction AdminStateAction `json:"stateAction"`
}
