package repository

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"gorm.io/gorm"
)

// RequestRepository 参与申请仓储接口
type RequestRepository interface {
	Save(request *model.ParticipationRequestModel) error
	CountConfirmedByEventIDs(eventIDs []int64) (map[int64]int64, error)
}

// requestRepository 参与申请仓储实现
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建参与申请仓储
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Save 保存参与申请
// 申请流程不在本服务内,目前只有测试用它准备已确认申请
func (r *requestRepository) Save(request *model.ParticipationRequestModel) error {
	return r.db.Save(request).Error
}

type confirmedCount struct {
	EventID   int64
	Confirmed int64
}

// CountConfirmedByEventIDs 用一条分组查询统计每个事件的已确认申请数
// 没有已确认申请的事件不出现在结果中
func (r *requestRepository) CountConfirmedByEventIDs(eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []confirmedCount
	err := r.db.Model(&model.ParticipationRequestModel{}).
		Select("event_id, COUNT(*) AS confirmed").
		Where("event_id IN ? AND status = ?", eventIDs, model.RequestStatusConfirmed).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.EventID] = row.Confirmed
	}
	return counts, nil
}
