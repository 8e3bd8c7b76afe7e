package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewUserRequest 创建用户请求
type NewUserRequest struct {
	Name  string `json:"name" binding:"required,trimmed_min=2,trimmed_max=250"`
	Email string `json:"email" binding:"required,min=6,max=254,email"`
}

// UserService 用户服务接口
type UserService interface {
	Create(ctx context.Context, req *NewUserRequest) (*UserDto, error)
	List(ctx context.Context, ids []int64, page Page) ([]UserDto, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB, log *logrus.Logger) UserService {
	return &userService{db: db, log: log}
}

// Create 创建用户,邮箱重复返回冲突
func (s *userService) Create(ctx context.Context, req *NewUserRequest) (*UserDto, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user := &model.UserModel{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if err := repository.NewUserRepository(s.db.WithContext(ctx)).Save(user); err != nil {
		return nil, storeError(err, "User", 0)
	}

	s.log.WithField("user_id", user.ID).Info("user created")
	dto := toUserDto(user)
	return &dto, nil
}

// List 按 ID 列表分页查看用户,ids 为空时返回全部
func (s *userService) List(ctx context.Context, ids []int64, page Page) ([]UserDto, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}

	var users []*model.UserModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		users, err = repository.NewUserRepository(tx).FindByIDs(ids, page.From, page.Size)
		if err != nil {
			return fmt.Errorf("failed to find users: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(users, toUserDto), nil
}

// Delete 删除用户,仍被引用时返回冲突
func (s *userService) Delete(ctx context.Context, id int64) error {
	deleted, err := repository.NewUserRepository(s.db.WithContext(ctx)).Delete(id)
	if err != nil {
		return storeError(err, "User", id)
	}
	if !deleted {
		return notFound("User", id)
	}

	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}
