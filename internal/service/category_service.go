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

// CategoryRequest 创建或修改分类请求
type CategoryRequest struct {
	Name string `json:"name" binding:"required,trimmed_min=1,trimmed_max=50"`
}

// CategoryService 分类服务接口
type CategoryService interface {
	Create(ctx context.Context, req *CategoryRequest) (*CategoryDto, error)
	Update(ctx context.Context, id int64, req *CategoryRequest) (*CategoryDto, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*CategoryDto, error)
	List(ctx context.Context, page Page) ([]CategoryDto, error)
}

type categoryService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewCategoryService 创建分类服务
func NewCategoryService(db *gorm.DB, log *logrus.Logger) CategoryService {
	return &categoryService{db: db, log: log}
}

// Create 创建分类,名称重复返回冲突
func (s *categoryService) Create(ctx context.Context, req *CategoryRequest) (*CategoryDto, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	category := &model.CategoryModel{Name: strings.TrimSpace(req.Name)}
	if err := repository.NewCategoryRepository(s.db.WithContext(ctx)).Save(category); err != nil {
		return nil, storeError(err, "Category", 0)
	}

	s.log.WithFields(logrus.Fields{"category_id": category.ID, "name": category.Name}).Info("category created")
	dto := toCategoryDto(category)
	return &dto, nil
}

// Update 修改分类名称
func (s *categoryService) Update(ctx context.Context, id int64, req *CategoryRequest) (*CategoryDto, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var category *model.CategoryModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)
		var err error
		category, err = categories.FindByID(id)
		if err != nil {
			return storeError(err, "Category", id)
		}
		name := strings.TrimSpace(req.Name)
		if category.Name == name {
			return nil
		}
		category.Name = name
		if err := categories.Save(category); err != nil {
			return storeError(err, "Category", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toCategoryDto(category)
	return &dto, nil
}

// Delete 删除分类,仍被事件引用时返回冲突
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := repository.NewEventRepository(tx).CountByCategory(id)
		if err != nil {
			return fmt.Errorf("failed to count category events: %w", err)
		}
		if count > 0 {
			return newError(ErrConflict, "The category with id=%d is not empty", id)
		}

		deleted, err := repository.NewCategoryRepository(tx).Delete(id)
		if err != nil {
			return storeError(err, "Category", id)
		}
		if !deleted {
			return notFound("Category", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}

// Get 查看分类
func (s *categoryService) Get(ctx context.Context, id int64) (*CategoryDto, error) {
	category, err := repository.NewCategoryRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, storeError(err, "Category", id)
	}
	dto := toCategoryDto(category)
	return &dto, nil
}

// List 分页查看分类
func (s *categoryService) List(ctx context.Context, page Page) ([]CategoryDto, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}

	var categories []*model.CategoryModel
	err := database.ReadOnly(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		categories, err = repository.NewCategoryRepository(tx).FindAll(page.From, page.Size)
		if err != nil {
			return fmt.Errorf("failed to find categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(categories, toCategoryDto), nil
}
