package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategoryService 测试分类的增删改查
func TestCategoryService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.categories.Create(ctx, &service.CategoryRequest{Name: " Concerts "})
	require.NoError(t, err)
	assert.Equal(t, "Concerts", created.Name)

	_, err = e.categories.Create(ctx, &service.CategoryRequest{Name: "Concerts"})
	assert.True(t, errors.Is(err, service.ErrConflict))

	_, err = e.categories.Create(ctx, &service.CategoryRequest{Name: ""})
	assert.True(t, errors.Is(err, service.ErrValidation))

	renamed, err := e.categories.Update(ctx, created.ID, &service.CategoryRequest{Name: "Theatre"})
	require.NoError(t, err)
	assert.Equal(t, "Theatre", renamed.Name)

	_, err = e.categories.Update(ctx, created.ID, &service.CategoryRequest{Name: "category1"})
	assert.True(t, errors.Is(err, service.ErrConflict))

	_, err = e.categories.Update(ctx, 9999, &service.CategoryRequest{Name: "Ghost"})
	assert.True(t, errors.Is(err, service.ErrNotFound))

	got, err := e.categories.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theatre", got.Name)

	list, err := e.categories.List(ctx, service.Page{From: 0, Size: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, e.categories.Delete(ctx, created.ID))
	_, err = e.categories.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	err = e.categories.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

// TestCategoryDelete_InUse 测试被事件引用的分类不可删除
func TestCategoryDelete_InUse(t *testing.T) {
	e := newEnv(t)
	e.createEvent(t, 0)

	err := e.categories.Delete(context.Background(), e.categoryIDs[0])
	assert.True(t, errors.Is(err, service.ErrConflict))
}

// TestUserService 测试用户管理
func TestUserService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.users.Create(ctx, &service.NewUserRequest{Name: "Alex Doe", Email: "alex@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", created.Email)

	_, err = e.users.Create(ctx, &service.NewUserRequest{Name: "Other", Email: "alex@example.com"})
	assert.True(t, errors.Is(err, service.ErrConflict))

	_, err = e.users.Create(ctx, &service.NewUserRequest{Name: "Bad", Email: "not-an-email"})
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = e.users.Create(ctx, &service.NewUserRequest{Name: "A", Email: "a@example.com"})
	assert.True(t, errors.Is(err, service.ErrValidation))

	all, err := e.users.List(ctx, nil, service.DefaultPage)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	some, err := e.users.List(ctx, []int64{created.ID, e.userIDs[0]}, service.DefaultPage)
	require.NoError(t, err)
	assert.Len(t, some, 2)

	require.NoError(t, e.users.Delete(ctx, created.ID))
	err = e.users.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
