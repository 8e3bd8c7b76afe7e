package service_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/UserUmbasa/explore-with-me/internal/stats"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.Migrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeStats 内存中的统计服务
type fakeStats struct {
	mu       sync.Mutex
	views    map[string]int64
	statsErr error
	batchErr error
	hitErr   error

	statsCalls int
	lastURIs   []string
	lastUnique bool
	batches    [][]stats.EndpointHit
	singles    []stats.EndpointHit
}

func newFakeStats() *fakeStats {
	return &fakeStats{views: make(map[string]int64)}
}

func (f *fakeStats) SaveHit(_ context.Context, hit stats.EndpointHit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hitErr != nil {
		return f.hitErr
	}
	f.singles = append(f.singles, hit)
	return nil
}

func (f *fakeStats) SaveHits(_ context.Context, hits []stats.EndpointHit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, hits)
	return nil
}

func (f *fakeStats) GetStats(_ context.Context, _, _ time.Time, uris []string, unique bool) ([]stats.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	f.lastURIs = append([]string(nil), uris...)
	f.lastUnique = unique
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	var result []stats.ViewStats
	for _, uri := range uris {
		if hits, ok := f.views[uri]; ok {
			result = append(result, stats.ViewStats{App: "ewm-main-service", URI: uri, Hits: hits})
		}
	}
	return result, nil
}

func (f *fakeStats) setViews(eventID int64, hits int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[model.EventURI(eventID)] = hits
}

// env 测试用的服务集合
type env struct {
	db         *gorm.DB
	stats      *fakeStats
	now        time.Time
	events     service.EventService
	comments   service.CommentService
	categories service.CategoryService
	users      service.UserService

	userIDs     []int64
	categoryIDs []int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	fs := newFakeStats()
	e := &env{
		db:         db,
		stats:      fs,
		now:        time.Now().Truncate(time.Second),
		comments:   service.NewCommentService(db, log),
		categories: service.NewCategoryService(db, log),
		users:      service.NewUserService(db, log),
	}
	e.events = service.NewEventServiceWithClock(db, service.NewEnricher(db, fs, log), log, func() time.Time { return e.now })

	for i := 1; i <= 3; i++ {
		u := &model.UserModel{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("user%d@example.com", i)}
		require.NoError(t, db.Create(u).Error)
		e.userIDs = append(e.userIDs, u.ID)
		c := &model.CategoryModel{Name: fmt.Sprintf("category%d", i)}
		require.NoError(t, db.Create(c).Error)
		e.categoryIDs = append(e.categoryIDs, c.ID)
	}
	return e
}

func (e *env) newEventRequest(date time.Time) *service.NewEventRequest {
	return &service.NewEventRequest{
		Title:       "Concert in the park",
		Annotation:  "An open-air concert for everyone",
		Description: "A long description of the open-air concert in the park",
		CategoryID:  e.categoryIDs[0],
		EventDate:   model.NewDateTime(date),
		Location:    &service.Location{Lat: 55.75, Lon: 37.61},
	}
}

// createEvent 通过服务创建 PENDING 事件
func (e *env) createEvent(t *testing.T, userIdx int) *service.EventFullDto {
	t.Helper()
	req := e.newEventRequest(e.now.Add(3 * time.Hour))
	dto, err := e.events.Create(context.Background(), e.userIDs[userIdx], req)
	require.NoError(t, err)
	return dto
}

// publishedEvent 通过服务创建并发布事件
func (e *env) publishedEvent(t *testing.T, userIdx int) *service.EventFullDto {
	t.Helper()
	created := e.createEvent(t, userIdx)
	dto, err := e.events.UpdateByAdmin(context.Background(), created.ID, &service.UpdateEventAdminRequest{StateAction: service.PublishEvent})
	require.NoError(t, err)
	return dto
}

// insertEvent 绕过服务直接写入事件
func (e *env) insertEvent(t *testing.T, mutate func(ev *model.EventModel)) *model.EventModel {
	t.Helper()
	ev := &model.EventModel{
		Title:             "Event title",
		Annotation:        "An annotation long enough",
		Description:       "A description long enough",
		CategoryID:        e.categoryIDs[0],
		InitiatorID:       e.userIDs[0],
		EventDate:         e.now.Add(24 * time.Hour),
		RequestModeration: true,
		State:             model.EventStatePending,
		CreatedOn:         e.now,
	}
	if mutate != nil {
		mutate(ev)
	}
	if ev.State == model.EventStatePublished && ev.PublishedOn == nil {
		published := ev.EventDate.Add(-2 * time.Hour)
		ev.PublishedOn = &published
	}
	require.NoError(t, e.db.Omit("Category", "Initiator").Create(ev).Error)
	return ev
}

func (e *env) confirm(t *testing.T, eventID int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.db.Create(&model.ParticipationRequestModel{
			EventID:     eventID,
			RequesterID: e.userIDs[i%len(e.userIDs)],
			Status:      model.RequestStatusConfirmed,
			Created:     e.now,
		}).Error)
	}
}
