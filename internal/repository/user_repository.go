package repository

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"gorm.io/gorm"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(user *model.UserModel) error
	FindByID(id int64) (*model.UserModel, error)
	Exists(id int64) (bool, error)
	FindByIDs(ids []int64, offset, limit int) ([]*model.UserModel, error)
	Delete(id int64) (bool, error)
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Save 保存用户
func (r *userRepository) Save(user *model.UserModel) error {
	return r.db.Save(user).Error
}

// FindByID 根据 ID 查找用户
func (r *userRepository) FindByID(id int64) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists 判断用户是否存在
func (r *userRepository) Exists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByIDs 分页查找用户,ids 为空时返回全部
func (r *userRepository) FindByIDs(ids []int64, offset, limit int) ([]*model.UserModel, error) {
	var users []*model.UserModel
	query := r.db.Model(&model.UserModel{})
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Delete 删除用户,返回是否存在
func (r *userRepository) Delete(id int64) (bool, error) {
	result := r.db.Delete(&model.UserModel{}, id)
	return result.RowsAffected > 0, result.Error
}
