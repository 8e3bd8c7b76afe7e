package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/metrics"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/repository"
	"github.com/UserUmbasa/explore-with-me/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxCommentLength = 2000

// NewCommentRequest 创建评论请求
type NewCommentRequest struct {
	Text string `json:"text" binding:"required,trimmed_min=1,trimmed_max=2000"`
}

// UpdateCommentRequest 更新评论请求,text 缺失或为空白时不做修改
type UpdateCommentRequest struct {
	Text model.Optional[string] `json:"text"`
}

// CommentAdminFilter 管理员评论查询条件,空集合不参与过滤
type CommentAdminFilter struct {
	EventIDs []int64
	UserIDs  []int64
}

// CommentService 评论服务接口
type CommentService interface {
	Create(ctx context.Context, userID, eventID int64, req *NewCommentRequest) (*CommentDto, error)
	Update(ctx context.Context, userID, commentID int64, req *UpdateCommentRequest) (*CommentDto, error)
	DeleteByUser(ctx context.Context, userID, commentID int64) error
	DeleteByAdmin(ctx context.Context, commentID int64) error
	GetPublic(ctx context.Context, eventID, commentID int64) (*CommentDto, error)
	ListByEvent(ctx context.Context, eventID int64, page Page) ([]CommentDto, error)
	ListByUser(ctx context.Context, userID int64, page Page) ([]CommentDto, error)
	ListAdmin(ctx context.Context, filter CommentAdminFilter, page Page) ([]CommentDto, error)
}

type commentService struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

// NewCommentService 创建评论服务
func NewCommentService(db *gorm.DB, log *logrus.Logger) CommentService {
	return &commentService{db: db, log: log, now: time.Now}
}

// Create 在已发布事件下发表评论
func (s *commentService) Create(ctx context.Context, userID, eventID int64, req *NewCommentRequest) (*CommentDto, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var created *model.CommentModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		event, err := repository.NewEventRepository(tx).FindByID(eventID)
		if err != nil {
			return storeError(err, "Event", eventID)
		}
		if event.State != model.EventStatePublished {
			return conditionNotMet("Comments are allowed only on published events")
		}

		now := s.now()
		comment := &model.CommentModel{
			Text:      strings.TrimSpace(req.Text),
			UserID:    userID,
			EventID:   eventID,
			Status:    model.CommentStatusPublished,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := comment.Validate(); err != nil {
			return validationError(err)
		}

		comments := repository.NewCommentRepository(tx)
		if err := comments.Create(comment); err != nil {
			return storeError(err, "Comment", 0)
		}
		created, err = comments.FindByID(comment.ID)
		if err != nil {
			return fmt.Errorf("failed to reload comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAction("create", created)
	dto := ToCommentDto(created)
	return &dto, nil
}

// Update 作者修改评论,状态变为 EDITED
func (s *commentService) Update(ctx context.Context, userID, commentID int64, req *UpdateCommentRequest) (*CommentDto, error) {
	text, _ := req.Text.Get()
	text = strings.TrimSpace(text)
	if text != "" {
		if err := utils.ValidateLength("text", text, 1, maxCommentLength); err != nil {
			return nil, validationError(err)
		}
	}

	var edited bool
	var result *model.CommentModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := repository.NewCommentRepository(tx)
		comment, err := comments.FindByID(commentID)
		if err != nil {
			return storeError(err, "Comment", commentID)
		}
		if comment.UserID != userID {
			return noAccess("User with id=%d is not the author of comment with id=%d", userID, commentID)
		}
		if comment.Status == model.CommentStatusDeleted {
			return conditionNotMet("Deleted comment with id=%d cannot be edited", commentID)
		}

		result = comment
		if text == "" {
			return nil
		}
		comment.Text = text
		comment.Status = model.CommentStatusEdited
		comment.UpdatedAt = s.now()
		if err := comments.Save(comment); err != nil {
			return storeError(err, "Comment", commentID)
		}
		edited = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if edited {
		s.recordAction("edit", result)
	}
	dto := ToCommentDto(result)
	return &dto, nil
}

// DeleteByUser 作者软删除评论
func (s *commentService) DeleteByUser(ctx context.Context, userID, commentID int64) error {
	return s.softDelete(ctx, commentID, func(comment *model.CommentModel) error {
		if comment.UserID != userID {
			return noAccess("User with id=%d is not the author of comment with id=%d", userID, commentID)
		}
		return nil
	})
}

// DeleteByAdmin 管理员软删除评论,对已删除评论重复调用不报错
func (s *commentService) DeleteByAdmin(ctx context.Context, commentID int64) error {
	return s.softDelete(ctx, commentID, nil)
}

func (s *commentService) softDelete(ctx context.Context, commentID int64, authorize func(*model.CommentModel) error) error {
	var deleted *model.CommentModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := repository.NewCommentRepository(tx)
		comment, err := comments.FindByID(commentID)
		if err != nil {
			return storeError(err, "Comment", commentID)
		}
		if authorize != nil {
			if err := authorize(comment); err != nil {
				return err
			}
		}
		if comment.Status == model.CommentStatusDeleted {
			return nil
		}

		comment.Status = model.CommentStatusDeleted
		comment.UpdatedAt = s.now()
		if err := comments.Save(comment); err != nil {
			return storeError(err, "Comment", commentID)
		}
		deleted = comment
		return nil
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		s.recordAction("delete", deleted)
	}
	return nil
}

// GetPublic 公开查看单条评论,已删除或不属于该事件视为不存在
func (s *commentService) GetPublic(ctx context.Context, eventID, commentID int64) (*CommentDto, error) {
	var comment *model.CommentModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		comment, err = repository.NewCommentRepository(tx).FindByID(commentID)
		if err != nil {
			return storeError(err, "Comment", commentID)
		}
		if comment.EventID != eventID || !comment.Visible() {
			return notFound("Comment", commentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := ToCommentDto(comment)
	return &dto, nil
}

// ListByEvent 公开查看事件下的可见评论
func (s *commentService) ListByEvent(ctx context.Context, eventID int64, page Page) ([]CommentDto, error) {
	return s.list(ctx, page, func(tx *gorm.DB) ([]*model.CommentModel, error) {
		if _, err := repository.NewEventRepository(tx).FindByID(eventID); err != nil {
			return nil, storeError(err, "Event", eventID)
		}
		return repository.NewCommentRepository(tx).FindByEvent(eventID, model.VisibleCommentStatuses, page.From, page.Size)
	})
}

// ListByUser 用户查看自己未删除的评论
func (s *commentService) ListByUser(ctx context.Context, userID int64, page Page) ([]CommentDto, error) {
	return s.list(ctx, page, func(tx *gorm.DB) ([]*model.CommentModel, error) {
		if err := requireUser(tx, userID); err != nil {
			return nil, err
		}
		return repository.NewCommentRepository(tx).FindByUser(userID, model.VisibleCommentStatuses, page.From, page.Size)
	})
}

// ListAdmin 管理员按事件和作者查看全部评论
func (s *commentService) ListAdmin(ctx context.Context, filter CommentAdminFilter, page Page) ([]CommentDto, error) {
	return s.list(ctx, page, func(tx *gorm.DB) ([]*model.CommentModel, error) {
		return repository.NewCommentRepository(tx).FindByFilter(&repository.CommentFilter{
			EventIDs: filter.EventIDs,
			UserIDs:  filter.UserIDs,
		}, page.From, page.Size)
	})
}

func (s *commentService) list(ctx context.Context, page Page, find func(tx *gorm.DB) ([]*model.CommentModel, error)) ([]CommentDto, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}

	var comments []*model.CommentModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		comments, err = find(tx)
		if err != nil {
			var svcErr *Error
			if errors.As(err, &svcErr) {
				return err
			}
			return fmt.Errorf("failed to find comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(comments, ToCommentDto), nil
}

func (s *commentService) recordAction(action string, comment *model.CommentModel) {
	metrics.RecordCommentAction(action)
	s.log.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"event_id":   comment.EventID,
		"user_id":    comment.UserID,
		"action":     action,
	}).Info("comment changed")
}
