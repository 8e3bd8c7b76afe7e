package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
)

func paramError(name, value, reason string) error {
	return &service.Error{
		Kind:    service.ErrValidation,
		Message: fmt.Sprintf("Field: %s. Error: %s. Value: %s", name, reason, value),
	}
}

// pathID 解析路径中的正整数 ID
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, paramError(name, raw, "must be a positive integer")
	}
	return id, nil
}

// pathIDs 依次解析多个路径 ID
func pathIDs(c *gin.Context, names ...string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := pathID(c, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// pageQuery 分页参数,默认 0/10
type pageQuery struct {
	From int `form:"from,default=0" binding:"gte=0"`
	Size int `form:"size,default=10" binding:"gte=1"`
}

// publicEventQuery GET /events 的查询参数
type publicEventQuery struct {
	Text          string     `form:"text"`
	Categories    []string   `form:"categories"`
	Paid          *bool      `form:"paid"`
	RangeStart    *time.Time `form:"rangeStart" time_format:"2006-01-02 15:04:05"`
	RangeEnd      *time.Time `form:"rangeEnd" time_format:"2006-01-02 15:04:05"`
	OnlyAvailable bool       `form:"onlyAvailable"`
	Sort          string     `form:"sort"`
}

// adminEventQuery GET /admin/events 的查询参数
type adminEventQuery struct {
	Users      []string   `form:"users"`
	States     []string   `form:"states"`
	Categories []string   `form:"categories"`
	RangeStart *time.Time `form:"rangeStart" time_format:"2006-01-02 15:04:05"`
	RangeEnd   *time.Time `form:"rangeEnd" time_format:"2006-01-02 15:04:05"`
}

// adminCommentQuery GET /admin/comments 的查询参数
// eventIds、userIds 为兼容旧客户端的别名
type adminCommentQuery struct {
	Events   []string `form:"events"`
	Users    []string `form:"users"`
	EventIDs []string `form:"eventIds"`
	UserIDs  []string `form:"userIds"`
}

// userListQuery GET /admin/users 的查询参数
type userListQuery struct {
	IDs []string `form:"ids"`
}

// bindQuery 绑定查询参数,失败时转换为 ErrValidation
func bindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return service.BindingError(err)
	}
	return nil
}

func pageParams(c *gin.Context) (service.Page, error) {
	var q pageQuery
	if err := bindQuery(c, &q); err != nil {
		return service.Page{}, err
	}
	return service.Page{From: q.From, Size: q.Size}, nil
}

// splitList 同时支持 a=1&a=2 和 a=1,2 两种写法
func splitList(lists ...[]string) []string {
	var values []string
	for _, list := range lists {
		for _, raw := range list {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
	}
	return values
}

func parseIDs(name string, lists ...[]string) ([]int64, error) {
	raw := splitList(lists...)
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, paramError(name, v, "must be a list of integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// optionalTime 空参数绑定为零值时间,视为未提供
func optionalTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
