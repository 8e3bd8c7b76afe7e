package api

import (
	"net/http"

	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
)

// CommentController 评论控制器
type CommentController struct {
	comments service.CommentService
}

// NewCommentController 创建评论控制器
func NewCommentController(comments service.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

// ListByEvent GET /events/:id/comments
func (h *CommentController) ListByEvent(c *gin.Context) {
	eventID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	comments, err := h.comments.ListByEvent(c.Request.Context(), eventID, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// GetPublic GET /events/:id/comments/:commentId
func (h *CommentController) GetPublic(c *gin.Context) {
	ids, err := pathIDs(c, "id", "commentId")
	if err != nil {
		fail(c, err)
		return
	}

	comment, err := h.comments.GetPublic(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create POST /users/:userId/events/:eventId/comments
func (h *CommentController) Create(c *gin.Context) {
	ids, err := pathIDs(c, "userId", "eventId")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.NewCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), ids[0], ids[1], &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update PATCH /users/:userId/comments/:commentId
func (h *CommentController) Update(c *gin.Context) {
	ids, err := pathIDs(c, "userId", "commentId")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), ids[0], ids[1], &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteByUser DELETE /users/:userId/comments/:commentId
func (h *CommentController) DeleteByUser(c *gin.Context) {
	ids, err := pathIDs(c, "userId", "commentId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.comments.DeleteByUser(c.Request.Context(), ids[0], ids[1]); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByUser GET /users/:userId/comments
func (h *CommentController) ListByUser(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	comments, err := h.comments.ListByUser(c.Request.Context(), userID, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// ListAdmin GET /admin/comments?events=&users=
func (h *CommentController) ListAdmin(c *gin.Context) {
	var q adminCommentQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	eventIDs, err := parseIDs("events", q.Events, q.EventIDs)
	if err != nil {
		fail(c, err)
		return
	}
	userIDs, err := parseIDs("users", q.Users, q.UserIDs)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	comments, err := h.comments.ListAdmin(c.Request.Context(), service.CommentAdminFilter{EventIDs: eventIDs, UserIDs: userIDs}, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteByAdmin DELETE /admin/comments/:id
func (h *CommentController) DeleteByAdmin(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.comments.DeleteByAdmin(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
