package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestRequestRepository_CountConfirmed 测试已确认申请计数
func TestRequestRepository_CountConfirmed(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)
	events := repository.NewEventRepository(db)
	repo := repository.NewRequestRepository(db)

	e1 := newEvent(f, 0, 0, model.EventStatePublished, time.Now().Add(24*time.Hour))
	e2 := newEvent(f, 0, 0, model.EventStatePublished, time.Now().Add(24*time.Hour))
	e3 := newEvent(f, 0, 0, model.EventStatePublished, time.Now().Add(24*time.Hour))
	for _, e := range []*model.EventModel{e1, e2, e3} {
		require.NoError(t, events.Create(e))
	}

	statuses := map[int64][]model.RequestStatus{
		e1.ID: {model.RequestStatusConfirmed, model.RequestStatusConfirmed, model.RequestStatusPending},
		e2.ID: {model.RequestStatusRejected, model.RequestStatusCanceled},
		e3.ID: {model.RequestStatusConfirmed},
	}
	for eventID, list := range statuses {
		for _, s := range list {
			require.NoError(t, repo.Save(&model.ParticipationRequestModel{
				EventID: eventID, RequesterID: f.users[1].ID, Status: s, Created: time.Now(),
			}))
		}
	}

	counts, err := repo.CountConfirmedByEventIDs([]int64{e1.ID, e2.ID, e3.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[e1.ID])
	assert.Equal(t, int64(0), counts[e2.ID])
	assert.Equal(t, int64(1), counts[e3.ID])

	counts, err = repo.CountConfirmedByEventIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

// TestRequestRepository_CountConfirmedIsOneGroupedQuery 测试计数只发出一条分组查询
func TestRequestRepository_CountConfirmedIsOneGroupedQuery(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT event_id, COUNT\(\*\) AS confirmed FROM "participation_requests" WHERE event_id IN \(\$1,\$2,\$3\) AND status = \$4 GROUP BY "event_id"`).
		WithArgs(int64(4), int64(5), int64(6), "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "confirmed"}).
			AddRow(int64(4), int64(3)).
			AddRow(int64(6), int64(1)))

	counts, err := repository.NewRequestRepository(db).CountConfirmedByEventIDs([]int64{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{4: 3, 6: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
