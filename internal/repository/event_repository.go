package repository

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/search"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository 事件仓储接口
type EventRepository interface {
	Create(event *model.EventModel) error
	Save(event *model.EventModel) error
	FindByID(id int64) (*model.EventModel, error)
	FindByIDForUpdate(id int64) (*model.EventModel, error)
	FindPublishedByID(id int64) (*model.EventModel, error)
	FindByInitiator(initiatorID int64, offset, limit int) ([]*model.EventModel, error)
	Search(spec search.Spec) ([]*model.EventModel, error)
	CountByCategory(categoryID int64) (int64, error)
}

// eventRepository 事件仓储实现
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓储
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) withRefs() *gorm.DB {
	return r.db.Preload("Category").Preload("Initiator")
}

// Create 保存新事件,不级联写入关联
func (r *eventRepository) Create(event *model.EventModel) error {
	return r.db.Omit(clause.Associations).Create(event).Error
}

// Save 更新事件
func (r *eventRepository) Save(event *model.EventModel) error {
	return r.db.Omit(clause.Associations).Save(event).Error
}

// FindByID 根据 ID 查找事件
func (r *eventRepository) FindByID(id int64) (*model.EventModel, error) {
	var event model.EventModel
	if err := r.withRefs().Where("events.id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate 根据 ID 查找事件并加行锁,需在事务中调用
func (r *eventRepository) FindByIDForUpdate(id int64) (*model.EventModel, error) {
	var event model.EventModel
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("events.id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindPublishedByID 查找已发布事件
func (r *eventRepository) FindPublishedByID(id int64) (*model.EventModel, error) {
	var event model.EventModel
	err := r.withRefs().
		Where("events.id = ? AND events.state = ?", id, model.EventStatePublished).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByInitiator 分页查找用户发起的事件,按 ID 升序
func (r *eventRepository) FindByInitiator(initiatorID int64, offset, limit int) ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := r.withRefs().
		Where("events.initiator_id = ?", initiatorID).
		Order("events.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	return events, err
}

// Search 执行查询描述
func (r *eventRepository) Search(spec search.Spec) ([]*model.EventModel, error) {
	var events []*model.EventModel
	query := spec.Where.Apply(r.withRefs().Model(&model.EventModel{}))
	for _, order := range spec.Order {
		query = query.Order(order)
	}
	if spec.Offset > 0 {
		query = query.Offset(spec.Offset)
	}
	if spec.Limit > 0 {
		query = query.Limit(spec.Limit)
	}
	err := query.Find(&events).Error
	return events, err
}

// CountByCategory 统计引用某分类的事件数
func (r *eventRepository) CountByCategory(categoryID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.EventModel{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
