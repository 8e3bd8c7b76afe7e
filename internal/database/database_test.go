package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/config"
	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(sqlite.Open(dsn), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.Migrate(db))
	return db
}

// TestBuildDSN 测试 DSN 构造
func TestBuildDSN(t *testing.T) {
	dsn := database.BuildDSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "ewm", Password: "secret", DBName: "ewm", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=ewm password=secret dbname=ewm sslmode=disable", dsn)
}

// TestGetPoolConfig 测试连接池默认值
func TestGetPoolConfig(t *testing.T) {
	pool := database.GetPoolConfig(config.DatabaseConfig{MaxOpenConns: 50})
	assert.Equal(t, 50, pool.MaxOpenConns)
	assert.Equal(t, 10, pool.MaxIdleConns)
	assert.Equal(t, 3600, pool.ConnMaxLifetime)
	assert.Equal(t, 600, pool.ConnMaxIdleTime)
}

// TestMigrateCreatesTablesAndIndexes 测试迁移后表和索引存在
func TestMigrateCreatesTablesAndIndexes(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"categories", "users", "events", "comments", "participation_requests", "event_state_history"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&model.CommentModel{}, "idx_comments_event_status_created"))
	assert.True(t, db.Migrator().HasIndex(&model.CommentModel{}, "idx_comments_user_status_created"))
	assert.True(t, db.Migrator().HasIndex(&model.EventModel{}, "idx_events_state"))
	assert.True(t, db.Migrator().HasIndex(&model.ParticipationRequestModel{}, "idx_requests_event_status"))

	// 重复执行是幂等的
	require.NoError(t, database.Migrate(db))
}

// TestIsUniqueViolation 测试唯一约束识别
func TestIsUniqueViolation(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&model.CategoryModel{Name: "Concerts"}).Error)
	err := db.Create(&model.CategoryModel{Name: "Concerts"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	assert.True(t, database.IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, database.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.False(t, database.IsUniqueViolation(nil))
}

// TestIsForeignKeyViolation 测试外键约束识别
func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, database.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, database.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, database.IsForeignKeyViolation(nil))
}

// TestReadOnly 测试只读事务回调
func TestReadOnly(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&model.UserModel{Name: "Ann", Email: "ann@example.com"}).Error)

	var count int64
	err := database.ReadOnly(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Model(&model.UserModel{}).Count(&count).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	sentinel := errors.New("stop")
	err = database.ReadOnly(context.Background(), db, func(tx *gorm.DB) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

// TestCheckHealth 测试健康检查
func TestCheckHealth(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, database.CheckHealth(context.Background(), db))
	assert.Error(t, database.CheckHealth(context.Background(), nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, database.CheckHealth(ctx, db))
}

// TestMigrationNames 测试内嵌迁移文件
func TestMigrationNames(t *testing.T) {
	names, err := database.MigrationNames()
	require.NoError(t, err)
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
