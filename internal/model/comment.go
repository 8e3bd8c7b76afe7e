package model

import (
	"errors"
	"time"
)

// CommentStatus 评论状态
type CommentStatus string

const (
	CommentStatusPublished CommentStatus = "PUBLISHED"
	CommentStatusEdited    CommentStatus = "EDITED"
	CommentStatusDeleted   CommentStatus = "DELETED"
)

// VisibleCommentStatuses 公开接口可见的评论状态
var VisibleCommentStatuses = []CommentStatus{CommentStatusPublished, CommentStatusEdited}

// CommentModel 评论数据模型
type CommentModel struct {
	ID        int64         `gorm:"primaryKey;autoIncrement"`
	Text      string        `gorm:"type:varchar(2000);not null"`
	UserID    int64         `gorm:"not null"`
	User      UserModel     `gorm:"foreignKey:UserID"`
	EventID   int64         `gorm:"not null"`
	Event     EventModel    `gorm:"foreignKey:EventID"`
	Status    CommentStatus `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time     `gorm:"not null"`
	UpdatedAt time.Time     `gorm:"not null"`
}

// TableName 指定表名
func (CommentModel) TableName() string {
	return "comments"
}

// Visible 判断评论是否对外可见
func (c *CommentModel) Visible() bool {
	return c.Status == CommentStatusPublished || c.Status == CommentStatusEdited
}

// Validate 验证评论模型
func (c *CommentModel) Validate() error {
	if c.Text == "" {
		return errors.New("comment text is required")
	}
	if c.UserID <= 0 {
		return errors.New("comment author is required")
	}
	if c.EventID <= 0 {
		return errors.New("comment event is required")
	}
	switch c.Status {
	case CommentStatusPublished, CommentStatusEdited, CommentStatusDeleted:
	default:
		return errors.New("comment status is invalid")
	}
	return nil
}
