package api

import (
	"net/http"

	"github.com/UserUmbasa/explore-with-me/internal/search"
	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
)

// EventController 事件控制器,包含公开、发起人和管理员接口
type EventController struct {
	events service.EventService
	hits   service.HitRecorder
}

// NewEventController 创建事件控制器
func NewEventController(events service.EventService, hits service.HitRecorder) *EventController {
	return &EventController{events: events, hits: hits}
}

// Search 公开搜索事件并记录访问
// GET /events
func (h *EventController) Search(c *gin.Context) {
	filter, err := publicFilter(c)
	if err != nil {
		fail(c, err)
		return
	}

	events, err := h.events.SearchPublic(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	h.hits.RecordEvents(c.Request.Context(), ClientIP(c), ids)

	c.JSON(http.StatusOK, events)
}

// GetPublished 查看已发布事件并记录访问
// GET /events/:id
func (h *EventController) GetPublished(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	event, err := h.events.FindPublished(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	h.hits.RecordEvent(c.Request.Context(), ClientIP(c), id)

	c.JSON(http.StatusOK, event)
}

// Create 创建事件
// POST /users/:userId/events
func (h *EventController) Create(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.NewEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	event, err := h.events.Create(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListByInitiator 发起人的事件列表
// GET /users/:userId/events
func (h *EventController) ListByInitiator(c *gin.Context) {
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

	events, err := h.events.FindByInitiator(c.Request.Context(), userID, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetAsInitiator 发起人查看事件
// GET /users/:userId/events/:eventId
func (h *EventController) GetAsInitiator(c *gin.Context) {
	ids, err := pathIDs(c, "userId", "eventId")
	if err != nil {
		fail(c, err)
		return
	}

	event, err := h.events.FindOneAsInitiator(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// UpdateByUser 发起人更新事件
// PATCH /users/:userId/events/:eventId
func (h *EventController) UpdateByUser(c *gin.Context) {
	ids, err := pathIDs(c, "userId", "eventId")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.UpdateEventUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	event, err := h.events.UpdateByUser(c.Request.Context(), ids[0], ids[1], &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// SearchAdmin 管理员搜索事件
// GET /admin/events
func (h *EventController) SearchAdmin(c *gin.Context) {
	filter, err := adminFilter(c)
	if err != nil {
		fail(c, err)
		return
	}

	events, err := h.events.SearchAdmin(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// UpdateByAdmin 管理员更新、发布或驳回事件
// PATCH /admin/events/:id
func (h *EventController) UpdateByAdmin(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.UpdateEventAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.BindingError(err))
		return
	}

	event, err := h.events.UpdateByAdmin(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// History 事件状态变更记录
// GET /admin/events/:id/history
func (h *EventController) History(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	history, err := h.events.History(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func publicFilter(c *gin.Context) (search.PublicFilter, error) {
	var f search.PublicFilter
	var q publicEventQuery
	if err := bindQuery(c, &q); err != nil {
		return f, err
	}
	page, err := pageParams(c)
	if err != nil {
		return f, err
	}
	if f.Categories, err = parseIDs("categories", q.Categories); err != nil {
		return f, err
	}

	f.Text = q.Text
	f.Paid = q.Paid
	f.RangeStart = optionalTime(q.RangeStart)
	f.RangeEnd = optionalTime(q.RangeEnd)
	f.OnlyAvailable = q.OnlyAvailable
	f.Sort = search.Sort(q.Sort)
	f.From, f.Size = page.From, page.Size
	return f, nil
}

func adminFilter(c *gin.Context) (search.AdminFilter, error) {
	var f search.AdminFilter
	var q adminEventQuery
	if err := bindQuery(c, &q); err != nil {
		return f, err
	}
	page, err := pageParams(c)
	if err != nil {
		return f, err
	}
	if f.Users, err = parseIDs("users", q.Users); err != nil {
		return f, err
	}
	if f.Categories, err = parseIDs("categories", q.Categories); err != nil {
		return f, err
	}
	if f.States, err = search.ParseStates(splitList(q.States)); err != nil {
		return f, &service.Error{Kind: service.ErrValidation, Message: err.Error()}
	}

	f.RangeStart = optionalTime(q.RangeStart)
	f.RangeEnd = optionalTime(q.RangeEnd)
	f.From, f.Size = page.From, page.Size
	return f, nil
}
