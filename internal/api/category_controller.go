package api

import (
	"net/http"

	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
)

// CategoryController 分类控制器
type CategoryController struct {
	categories service.CategoryService
}

// NewCategoryController 创建分类控制器
func NewCategoryController(categories service.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// Create POST /admin/categories
func (h *CategoryController) Create(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	category, err := h.categories.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Update PATCH /admin/categories/:id
func (h *CategoryController) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete DELETE /admin/categories/:id
func (h *CategoryController) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get GET /categories/:id
func (h *CategoryController) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// List GET /categories
func (h *CategoryController) List(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	categories, err := h.categories.List(c.Request.Context(), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
