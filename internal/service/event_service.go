package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/metrics"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/repository"
	"github.com/UserUmbasa/explore-with-me/internal/search"
	"github.com/UserUmbasa/explore-with-me/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// pendingLeadTime 未发布事件距开始的最短时间
	pendingLeadTime = 2 * time.Hour
	// publishedLeadTime 已发布事件距开始的最短时间
	publishedLeadTime = time.Hour

	operatorAdmin = "admin"
)

// EventService 事件服务接口
type EventService interface {
	Create(ctx context.Context, userID int64, req *NewEventRequest) (*EventFullDto, error)
	UpdateByUser(ctx context.Context, userID, eventID int64, req *UpdateEventUserRequest) (*EventFullDto, error)
	UpdateByAdmin(ctx context.Context, eventID int64, req *UpdateEventAdminRequest) (*EventFullDto, error)
	FindByInitiator(ctx context.Context, userID int64, page Page) ([]EventShortDto, error)
	FindOneAsInitiator(ctx context.Context, userID, eventID int64) (*EventFullDto, error)
	FindPublished(ctx context.Context, eventID int64) (*EventFullDto, error)
	SearchPublic(ctx context.Context, filter search.PublicFilter) ([]EventShortDto, error)
	SearchAdmin(ctx context.Context, filter search.AdminFilter) ([]EventFullDto, error)
	History(ctx context.Context, eventID int64) ([]StateHistoryDto, error)
}

type eventService struct {
	db       *gorm.DB
	enricher Enricher
	log      *logrus.Logger
	now      func() time.Time
}

// NewEventService 创建事件服务
func NewEventService(db *gorm.DB, enricher Enricher, log *logrus.Logger) EventService {
	return &eventService{db: db, enricher: enricher, log: log, now: time.Now}
}

// NewEventServiceWithClock 创建使用指定时钟的事件服务
func NewEventServiceWithClock(db *gorm.DB, enricher Enricher, log *logrus.Logger, now func() time.Time) EventService {
	return &eventService{db: db, enricher: enricher, log: log, now: now}
}

// Create 创建事件,初始状态为 PENDING
func (s *eventService) Create(ctx context.Context, userID int64, req *NewEventRequest) (*EventFullDto, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var created *model.EventModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repository.NewUserRepository(tx).Exists(userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return notFound("User", userID)
		}
		if _, err := repository.NewCategoryRepository(tx).FindByID(req.CategoryID); err != nil {
			return storeError(err, "Category", req.CategoryID)
		}
		if err := checkEventDate(now, req.EventDate.Time, model.EventStatePending); err != nil {
			return err
		}

		event := req.toModel()
		event.InitiatorID = userID
		event.CreatedOn = now
		if err := event.Validate(); err != nil {
			return validationError(err)
		}

		events := repository.NewEventRepository(tx)
		if err := events.Create(event); err != nil {
			return storeError(err, "Event", 0)
		}
		if err := s.appendHistory(tx, event, "", actionCreate, userOperator(userID), now); err != nil {
			return err
		}

		created, err = events.FindByID(event.ID)
		if err != nil {
			return fmt.Errorf("failed to reload event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordEventCreated()
	s.log.WithFields(logrus.Fields{"event_id": created.ID, "initiator_id": userID}).Info("event created")

	dto := ToEventFullDto(created)
	return &dto, nil
}

// UpdateByUser 发起人更新事件
// 已发布事件不可修改;字段稀疏合并,stateAction 只在 PENDING 与 CANCELED 之间切换
func (s *eventService) UpdateByUser(ctx context.Context, userID, eventID int64, req *UpdateEventUserRequest) (*EventFullDto, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var action string
	updated, err := s.update(ctx, eventID, func(tx *gorm.DB, event *model.EventModel) error {
		if event.InitiatorID != userID {
			return noAccess("User with id=%d is not the initiator of event with id=%d", userID, eventID)
		}
		if event.State == model.EventStatePublished {
			return conditionNotMet("Only pending or canceled events can be changed")
		}

		if categoryID, ok := req.CategoryID.Get(); ok && categoryID != event.CategoryID {
			if _, err := repository.NewCategoryRepository(tx).FindByID(categoryID); err != nil {
				return storeError(err, "Category", categoryID)
			}
			event.CategoryID = categoryID
		}
		if err := applyEventDate(now, event, req.EventDate); err != nil {
			return err
		}
		req.apply(event)

		from := event.State
		switch req.StateAction {
		case SendToReview:
			event.State = model.EventStatePending
		case CancelReview:
			event.State = model.EventStateCanceled
		default:
			return nil
		}
		action = string(req.StateAction)
		return s.appendHistory(tx, event, from, action, userOperator(userID), now)
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(updated, action, userOperator(userID))
	return s.full(ctx, updated)
}

// UpdateByAdmin 管理员更新事件并处理发布/驳回
func (s *eventService) UpdateByAdmin(ctx context.Context, eventID int64, req *UpdateEventAdminRequest) (*EventFullDto, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var action string
	updated, err := s.update(ctx, eventID, func(tx *gorm.DB, event *model.EventModel) error {
		if err := applyEventDate(now, event, req.EventDate); err != nil {
			return err
		}
		req.apply(event)

		from := event.State
		switch req.StateAction {
		case PublishEvent:
			if event.State != model.EventStatePending {
				return conditionNotMet("Cannot publish the event because it's not in the right state: %s", event.State)
			}
			if err := checkEventDate(now, event.EventDate, model.EventStatePublished); err != nil {
				return err
			}
			published := now
			event.State = model.EventStatePublished
			event.PublishedOn = &published
		case RejectEvent:
			if event.State == model.EventStatePublished {
				return conditionNotMet("Cannot reject the event because it's already published")
			}
			event.State = model.EventStateCanceled
		default:
			return nil
		}
		action = string(req.StateAction)
		return s.appendHistory(tx, event, from, action, operatorAdmin, now)
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(updated, action, operatorAdmin)
	return s.full(ctx, updated)
}

// update 在写事务中加锁读取事件、执行修改并保存
func (s *eventService) update(ctx context.Context, eventID int64, mutate func(tx *gorm.DB, event *model.EventModel) error) (*model.EventModel, error) {
	var updated *model.EventModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := repository.NewEventRepository(tx)
		event, err := events.FindByIDForUpdate(eventID)
		if err != nil {
			return storeError(err, "Event", eventID)
		}
		if err := mutate(tx, event); err != nil {
			return err
		}
		if err := event.Validate(); err != nil {
			return validationError(err)
		}
		if err := events.Save(event); err != nil {
			return storeError(err, "Event", eventID)
		}

		updated, err = events.FindByID(eventID)
		if err != nil {
			return fmt.Errorf("failed to reload event: %w", err)
		}
		return nil
	})
	return updated, err
}

// FindByInitiator 分页返回用户发起的事件
func (s *eventService) FindByInitiator(ctx context.Context, userID int64, page Page) ([]EventShortDto, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}

	var events []*model.EventModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		var err error
		events, err = repository.NewEventRepository(tx).FindByInitiator(userID, page.From, page.Size)
		if err != nil {
			return fmt.Errorf("failed to find events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enricher.Enrich(ctx, events); err != nil {
		return nil, err
	}
	return mapSlice(events, ToEventShortDto), nil
}

// FindOneAsInitiator 发起人查看自己的事件
func (s *eventService) FindOneAsInitiator(ctx context.Context, userID, eventID int64) (*EventFullDto, error) {
	var event *model.EventModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		var err error
		event, err = repository.NewEventRepository(tx).FindByID(eventID)
		if err != nil {
			return storeError(err, "Event", eventID)
		}
		if event.InitiatorID != userID {
			return noAccess("User with id=%d is not the initiator of event with id=%d", userID, eventID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.full(ctx, event)
}

// FindPublished 查看已发布事件,未发布视为不存在
func (s *eventService) FindPublished(ctx context.Context, eventID int64) (*EventFullDto, error) {
	var event *model.EventModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		event, err = repository.NewEventRepository(tx).FindPublishedByID(eventID)
		if err != nil {
			return storeError(err, "Event", eventID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.full(ctx, event)
}

// SearchPublic 公开搜索已发布事件
func (s *eventService) SearchPublic(ctx context.Context, filter search.PublicFilter) ([]EventShortDto, error) {
	if filter.Text != "" {
		if err := utils.ValidateLength("text", filter.Text, 3, 1000); err != nil {
			return nil, validationError(err)
		}
	}
	if err := (Page{From: filter.From, Size: filter.Size}).validate(); err != nil {
		return nil, err
	}
	spec, err := filter.Build(s.now())
	if err != nil {
		return nil, searchError(err)
	}

	events, err := s.search(ctx, spec)
	if err != nil {
		return nil, err
	}
	return mapSlice(events, ToEventShortDto), nil
}

// SearchAdmin 管理员搜索事件
func (s *eventService) SearchAdmin(ctx context.Context, filter search.AdminFilter) ([]EventFullDto, error) {
	if err := (Page{From: filter.From, Size: filter.Size}).validate(); err != nil {
		return nil, err
	}
	spec, err := filter.Build()
	if err != nil {
		return nil, searchError(err)
	}

	events, err := s.search(ctx, spec)
	if err != nil {
		return nil, err
	}
	return mapSlice(events, ToEventFullDto), nil
}

// search 读事务内查询,事务结束后再填充统计并应用内存条件
func (s *eventService) search(ctx context.Context, spec search.Spec) ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		events, err = repository.NewEventRepository(tx).Search(spec)
		if err != nil {
			return fmt.Errorf("failed to search events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enricher.Enrich(ctx, events); err != nil {
		return nil, err
	}
	return spec.Finish(events), nil
}

// History 返回事件的状态变更记录
func (s *eventService) History(ctx context.Context, eventID int64) ([]StateHistoryDto, error) {
	var records []*model.EventStateHistoryModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := repository.NewEventRepository(tx).FindByID(eventID); err != nil {
			return storeError(err, "Event", eventID)
		}
		var err error
		records, err = repository.NewStateHistoryRepository(tx).FindByEventID(eventID)
		if err != nil {
			return fmt.Errorf("failed to find event history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(records, toStateHistoryDto), nil
}

func (s *eventService) full(ctx context.Context, event *model.EventModel) (*EventFullDto, error) {
	if err := s.enricher.Enrich(ctx, []*model.EventModel{event}); err != nil {
		return nil, err
	}
	dto := ToEventFullDto(event)
	return &dto, nil
}

func (s *eventService) appendHistory(tx *gorm.DB, event *model.EventModel, from model.EventState, action, operator string, at time.Time) error {
	record := &model.EventStateHistoryModel{
		EventID:   event.ID,
		FromState: from,
		ToState:   event.State,
		Action:    action,
		Operator:  operator,
		CreatedAt: at,
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid state history: %w", err)
	}
	if err := repository.NewStateHistoryRepository(tx).Save(record); err != nil {
		return fmt.Errorf("failed to save state history: %w", err)
	}
	return nil
}

func (s *eventService) logTransition(event *model.EventModel, action, operator string) {
	if action == "" {
		return
	}
	metrics.RecordEventTransition(action)
	s.log.WithFields(logrus.Fields{
		"event_id": event.ID,
		"action":   action,
		"state":    event.State,
		"operator": operator,
	}).Info("event state changed")
}

// applyEventDate 按事件当前状态校验并写入新的开始时间
func applyEventDate(now time.Time, event *model.EventModel, date model.Optional[model.DateTime]) error {
	v, ok := date.Get()
	if !ok {
		return nil
	}
	if err := checkEventDate(now, v.Time, event.State); err != nil {
		return err
	}
	event.EventDate = v.Time
	return nil
}

// checkEventDate 已发布事件要求至少提前 1 小时,其他状态至少提前 2 小时
func checkEventDate(now, eventDate time.Time, state model.EventState) error {
	lead := pendingLeadTime
	if state == model.EventStatePublished {
		lead = publishedLeadTime
	}
	if eventDate.Before(now.Add(lead)) {
		return conditionNotMet("Field: eventDate. Error: must be at least %d hour(s) after the current time. Value: %s",
			int(lead.Hours()), model.FormatDateTime(eventDate))
	}
	return nil
}

func requireUser(tx *gorm.DB, userID int64) error {
	exists, err := repository.NewUserRepository(tx).Exists(userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return notFound("User", userID)
	}
	return nil
}

func userOperator(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// searchError 把查询条件错误转换为业务错误
func searchError(err error) error {
	switch {
	case errors.Is(err, search.ErrInvalidRange):
		return invalidRequest("%s", err.Error())
	case errors.Is(err, search.ErrInvalidSort), errors.Is(err, search.ErrInvalidState):
		return &Error{Kind: ErrValidation, Message: err.Error()}
	}
	return err
}
