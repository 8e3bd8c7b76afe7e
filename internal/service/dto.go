package service

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
)

// Location 事件地点
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CategoryDto 分类
type CategoryDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserShortDto 用户简要信息
type UserShortDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserDto 用户
type UserDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventShortDto 事件列表使用的简要信息
type EventShortDto struct {
	ID                int64          `json:"id"`
	Title             string         `json:"title"`
	Annotation        string         `json:"annotation"`
	Category          CategoryDto    `json:"category"`
	EventDate         model.DateTime `json:"eventDate"`
	Initiator         UserShortDto   `json:"initiator"`
	Paid              bool           `json:"paid"`
	ConfirmedRequests int64          `json:"confirmedRequests"`
	Views             int64          `json:"views"`
}

// EventFullDto 事件完整信息
type EventFullDto struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Annotation        string           `json:"annotation"`
	Description       string           `json:"description"`
	Category          CategoryDto      `json:"category"`
	Initiator         UserShortDto     `json:"initiator"`
	EventDate         model.DateTime   `json:"eventDate"`
	Location          Location         `json:"location"`
	Paid              bool             `json:"paid"`
	ParticipantLimit  int              `json:"participantLimit"`
	RequestModeration bool             `json:"requestModeration"`
	State             model.EventState `json:"state"`
	CreatedOn         model.DateTime   `json:"createdOn"`
	PublishedOn       *model.DateTime  `json:"publishedOn"`
	ConfirmedRequests int64            `json:"confirmedRequests"`
	Views             int64            `json:"views"`
}

// CommentDto 评论
type CommentDto struct {
	ID        int64               `json:"id"`
	Text      string              `json:"text"`
	Event     EventShortDto       `json:"event"`
	Author    UserShortDto        `json:"author"`
	CreatedAt model.DateTime      `json:"createdAt"`
	UpdatedAt model.DateTime      `json:"updatedAt"`
	Status    model.CommentStatus `json:"status"`
}

// StateHistoryDto 事件状态变更记录
type StateHistoryDto struct {
	FromState model.EventState `json:"fromState,omitempty"`
	ToState   model.EventState `json:"toState"`
	Action    string           `json:"action"`
	Operator  string           `json:"operator"`
	CreatedAt model.DateTime   `json:"createdAt"`
}

func toCategoryDto(c *model.CategoryModel) CategoryDto {
	return CategoryDto{ID: c.ID, Name: c.Name}
}

func toUserDto(u *model.UserModel) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserShortDto(u *model.UserModel) UserShortDto {
	return UserShortDto{ID: u.ID, Name: u.Name}
}

// ToEventShortDto 投影为简要信息
func ToEventShortDto(e *model.EventModel) EventShortDto {
	return EventShortDto{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Category:          toCategoryDto(&e.Category),
		EventDate:         model.NewDateTime(e.EventDate),
		Initiator:         toUserShortDto(&e.Initiator),
		Paid:              e.Paid,
		ConfirmedRequests: e.ConfirmedRequests,
		Views:             e.Views,
	}
}

// ToEventFullDto 投影为完整信息
func ToEventFullDto(e *model.EventModel) EventFullDto {
	return EventFullDto{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Category:          toCategoryDto(&e.Category),
		Initiator:         toUserShortDto(&e.Initiator),
		EventDate:         model.NewDateTime(e.EventDate),
		Location:          Location{Lat: e.LocationLat, Lon: e.LocationLon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             e.State,
		CreatedOn:         model.NewDateTime(e.CreatedOn),
		PublishedOn:       model.NewDateTimePtr(e.PublishedOn),
		ConfirmedRequests: e.ConfirmedRequests,
		Views:             e.Views,
	}
}

// ToCommentDto 投影评论
func ToCommentDto(c *model.CommentModel) CommentDto {
	return CommentDto{
		ID:        c.ID,
		Text:      c.Text,
		Event:     ToEventShortDto(&c.Event),
		Author:    toUserShortDto(&c.User),
		CreatedAt: model.NewDateTime(c.CreatedAt),
		UpdatedAt: model.NewDateTime(c.UpdatedAt),
		Status:    c.Status,
	}
}

func toStateHistoryDto(h *model.EventStateHistoryModel) StateHistoryDto {
	return StateHistoryDto{
		FromState: h.FromState,
		ToState:   h.ToState,
		Action:    h.Action,
		Operator:  h.Operator,
		CreatedAt: model.NewDateTime(h.CreatedAt),
	}
}

func mapSlice[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
