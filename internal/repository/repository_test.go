package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	users      []*model.UserModel
	categories []*model.CategoryModel
}

func seed(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{}
	for i := 1; i <= 3; i++ {
		u := &model.UserModel{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("user%d@example.com", i)}
		require.NoError(t, db.Create(u).Error)
		f.users = append(f.users, u)
		c := &model.CategoryModel{Name: fmt.Sprintf("category%d", i)}
		require.NoError(t, db.Create(c).Error)
		f.categories = append(f.categories, c)
	}
	return f
}

func newEvent(f *fixture, userIdx, catIdx int, state model.EventState, date time.Time) *model.EventModel {
	e := &model.EventModel{
		Title:             "Event title",
		Annotation:        "An annotation long enough",
		Description:       "A description long enough",
		CategoryID:        f.categories[catIdx].ID,
		InitiatorID:       f.users[userIdx].ID,
		EventDate:         date,
		LocationLat:       55.75,
		LocationLon:       37.61,
		RequestModeration: true,
		State:             state,
		CreatedOn:         time.Now(),
	}
	if state == model.EventStatePublished {
		published := date.Add(-2 * time.Hour)
		e.PublishedOn = &published
	}
	return e
}
