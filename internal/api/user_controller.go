package api

import (
	"net/http"

	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
)

// UserController 用户管理控制器
type UserController struct {
	users service.UserService
}

// NewUserController 创建用户管理控制器
func NewUserController(users service.UserService) *UserController {
	return &UserController{users: users}
}

// Create POST /admin/users
func (h *UserController) Create(c *gin.Context) {
	var req service.NewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	user, err := h.users.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// List GET /admin/users?ids=&from=&size=
func (h *UserController) List(c *gin.Context) {
	var q userListQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	ids, err := parseIDs("ids", q.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	users, err := h.users.List(c.Request.Context(), ids, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Delete DELETE /admin/users/:id
func (h *UserController) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
