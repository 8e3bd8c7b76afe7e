package repository

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"gorm.io/gorm"
)

// StateHistoryRepository 事件状态历史仓储接口
type StateHistoryRepository interface {
	Save(history *model.EventStateHistoryModel) error
	FindByEventID(eventID int64) ([]*model.EventStateHistoryModel, error)
}

// stateHistoryRepository 事件状态历史仓储实现
type stateHistoryRepository struct {
	db *gorm.DB
}

// NewStateHistoryRepository 创建状态历史仓储
func NewStateHistoryRepository(db *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: db}
}

// Save 保存状态历史
func (r *stateHistoryRepository) Save(history *model.EventStateHistoryModel) error {
	return r.db.Save(history).Error
}

// FindByEventID 根据事件 ID 查找状态历史
func (r *stateHistoryRepository) FindByEventID(eventID int64) ([]*model.EventStateHistoryModel, error) {
	var histories []*model.EventStateHistoryModel
	err := r.db.Where("event_id = ?", eventID).Order("created_at ASC, id ASC").Find(&histories).Error
	return histories, err
}
