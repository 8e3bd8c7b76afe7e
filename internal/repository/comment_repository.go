package repository

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository 评论仓储接口
type CommentRepository interface {
	Create(comment *model.CommentModel) error
	Save(comment *model.CommentModel) error
	FindByID(id int64) (*model.CommentModel, error)
	FindByEvent(eventID int64, statuses []model.CommentStatus, offset, limit int) ([]*model.CommentModel, error)
	FindByUser(userID int64, statuses []model.CommentStatus, offset, limit int) ([]*model.CommentModel, error)
	FindByFilter(filter *CommentFilter, offset, limit int) ([]*model.CommentModel, error)
}

// CommentFilter 评论查询过滤器
// 空集合表示不按该字段过滤
type CommentFilter struct {
	EventIDs []int64
	UserIDs  []int64
}

// commentRepository 评论仓储实现
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建评论仓储
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) withRefs() *gorm.DB {
	return r.db.
		Preload("User").
		Preload("Event").
		Preload("Event.Category").
		Preload("Event.Initiator")
}

// Create 保存新评论
func (r *commentRepository) Create(comment *model.CommentModel) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}

// Save 更新评论
func (r *commentRepository) Save(comment *model.CommentModel) error {
	return r.db.Omit(clause.Associations).Save(comment).Error
}

// FindByID 根据 ID 查找评论
func (r *commentRepository) FindByID(id int64) (*model.CommentModel, error) {
	var comment model.CommentModel
	if err := r.withRefs().Where("comments.id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByEvent 查找事件下指定状态的评论,按创建时间倒序
func (r *commentRepository) FindByEvent(eventID int64, statuses []model.CommentStatus, offset, limit int) ([]*model.CommentModel, error) {
	query := r.withRefs().Where("comments.event_id = ?", eventID)
	if len(statuses) > 0 {
		query = query.Where("comments.status IN ?", statuses)
	}
	return r.page(query, offset, limit)
}

// FindByUser 查找用户指定状态的评论,按创建时间倒序
func (r *commentRepository) FindByUser(userID int64, statuses []model.CommentStatus, offset, limit int) ([]*model.CommentModel, error) {
	query := r.withRefs().Where("comments.user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("comments.status IN ?", statuses)
	}
	return r.page(query, offset, limit)
}

// FindByFilter 按过滤器查找评论,不过滤状态
func (r *commentRepository) FindByFilter(filter *CommentFilter, offset, limit int) ([]*model.CommentModel, error) {
	query := r.withRefs()
	if filter != nil {
		if len(filter.EventIDs) > 0 {
			query = query.Where("comments.event_id IN ?", filter.EventIDs)
		}
		if len(filter.UserIDs) > 0 {
			query = query.Where("comments.user_id IN ?", filter.UserIDs)
		}
	}
	return r.page(query, offset, limit)
}

func (r *commentRepository) page(query *gorm.DB, offset, limit int) ([]*model.CommentModel, error) {
	var comments []*model.CommentModel
	err := query.
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
