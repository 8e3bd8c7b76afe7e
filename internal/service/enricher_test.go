package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnricher 测试批量填充确认数和浏览量
func TestEnricher(t *testing.T) {
	e := newEnv(t)
	ev1 := e.insertEvent(t, nil)
	ev2 := e.insertEvent(t, nil)
	ev3 := e.insertEvent(t, nil)
	e.confirm(t, ev1.ID, 2)
	require.NoError(t, e.db.Create(&model.ParticipationRequestModel{
		EventID: ev2.ID, RequesterID: e.userIDs[1], Status: model.RequestStatusPending, Created: e.now,
	}).Error)
	e.stats.setViews(ev1.ID, 4)
	e.stats.setViews(ev3.ID, 9)

	enricher := service.NewEnricher(e.db, e.stats, quietLogger())
	events := []*model.EventModel{ev1, ev2, ev3}
	require.NoError(t, enricher.Enrich(context.Background(), events))

	assert.Equal(t, int64(2), ev1.ConfirmedRequests)
	assert.Equal(t, int64(0), ev2.ConfirmedRequests)
	assert.Equal(t, int64(0), ev3.ConfirmedRequests)
	assert.Equal(t, int64(4), ev1.Views)
	assert.Equal(t, int64(0), ev2.Views)
	assert.Equal(t, int64(9), ev3.Views)
	assert.Equal(t, 1, e.stats.statsCalls)
	assert.True(t, e.stats.lastUnique)
}

// TestEnricher_Empty 测试空批次不访问存储和统计服务
func TestEnricher_Empty(t *testing.T) {
	e := newEnv(t)
	enricher := service.NewEnricher(e.db, e.stats, quietLogger())

	require.NoError(t, enricher.Enrich(context.Background(), nil))
	assert.Equal(t, 0, e.stats.statsCalls)
}

// TestEnricher_StatsFailure 测试统计服务失败时保留确认数
func TestEnricher_StatsFailure(t *testing.T) {
	e := newEnv(t)
	ev := e.insertEvent(t, nil)
	e.confirm(t, ev.ID, 1)
	e.stats.statsErr = errors.New("timeout")

	enricher := service.NewEnricher(e.db, e.stats, quietLogger())
	require.NoError(t, enricher.Enrich(context.Background(), []*model.EventModel{ev}))
	assert.Equal(t, int64(1), ev.ConfirmedRequests)
	assert.Equal(t, int64(0), ev.Views)
}
