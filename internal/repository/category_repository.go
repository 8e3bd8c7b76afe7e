package repository

import (
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"gorm.io/gorm"
)

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Save(category *model.CategoryModel) error
	FindByID(id int64) (*model.CategoryModel, error)
	FindAll(offset, limit int) ([]*model.CategoryModel, error)
	Delete(id int64) (bool, error)
}

// categoryRepository 分类仓储实现
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Save 保存分类
func (r *categoryRepository) Save(category *model.CategoryModel) error {
	return r.db.Save(category).Error
}

// FindByID 根据 ID 查找分类
func (r *categoryRepository) FindByID(id int64) (*model.CategoryModel, error) {
	var category model.CategoryModel
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindAll 分页查找分类
func (r *categoryRepository) FindAll(offset, limit int) ([]*model.CategoryModel, error) {
	var categories []*model.CategoryModel
	err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&categories).Error
	return categories, err
}

// Delete 删除分类,返回是否存在
func (r *categoryRepository) Delete(id int64) (bool, error) {
	result := r.db.Delete(&model.CategoryModel{}, id)
	return result.RowsAffected > 0, result.Error
}
