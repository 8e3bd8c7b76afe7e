package service

import (
	"context"
	"fmt"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/repository"
	"github.com/UserUmbasa/explore-with-me/internal/stats"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// statsWindow 查询浏览量时使用的时间窗口(前后各十年)
const statsWindow = 10 * 365 * 24 * time.Hour

// Enricher 批量填充事件的派生字段
type Enricher interface {
	Enrich(ctx context.Context, events []*model.EventModel) error
}

// enricher Enricher 实现
// 每批事件只发出一条分组计数查询和一次统计服务调用
type enricher struct {
	db    *gorm.DB
	stats stats.Client
	log   *logrus.Logger
	now   func() time.Time
}

// NewEnricher 创建 Enricher
func NewEnricher(db *gorm.DB, client stats.Client, log *logrus.Logger) Enricher {
	return &enricher{db: db, stats: client, log: log, now: time.Now}
}

// Enrich 填充 confirmedRequests 和 views
// 计数查询失败返回错误;统计服务失败时浏览量保持为 0
func (e *enricher) Enrich(ctx context.Context, events []*model.EventModel) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(events))
	uris := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
		uris = append(uris, ev.URI())
	}

	counts, err := repository.NewRequestRepository(e.db.WithContext(ctx)).CountConfirmedByEventIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to count confirmed requests: %w", err)
	}
	for _, ev := range events {
		ev.ConfirmedRequests = counts[ev.ID]
	}

	views := e.fetchViews(ctx, uris)
	for _, ev := range events {
		ev.Views = views[ev.ID]
	}
	return nil
}

func (e *enricher) fetchViews(ctx context.Context, uris []string) map[int64]int64 {
	views := make(map[int64]int64, len(uris))

	now := e.now()
	result, err := e.stats.GetStats(ctx, now.Add(-statsWindow), now.Add(statsWindow), uris, true)
	if err != nil {
		e.log.WithError(err).WithField("uris", len(uris)).Warn("stats service unavailable, views set to 0")
		return views
	}

	for _, vs := range result {
		id, err := model.ParseEventURI(vs.URI)
		if err != nil {
			e.log.WithError(err).WithField("uri", vs.URI).Warn("skipping stats entry with unexpected uri")
			continue
		}
		views[id] += vs.Hits
	}
	return views
}
