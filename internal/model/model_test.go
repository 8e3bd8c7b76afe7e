package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventModelTableName 测试表名
func TestEventModelTableName(t *testing.T) {
	assert.Equal(t, "events", model.EventModel{}.TableName())
	assert.Equal(t, "comments", model.CommentModel{}.TableName())
	assert.Equal(t, "categories", model.CategoryModel{}.TableName())
	assert.Equal(t, "users", model.UserModel{}.TableName())
	assert.Equal(t, "participation_requests", model.ParticipationRequestModel{}.TableName())
	assert.Equal(t, "event_state_history", model.EventStateHistoryModel{}.TableName())
}

// TestEventModelValidation 测试事件模型验证
func TestEventModelValidation(t *testing.T) {
	now := time.Now()
	event := &model.EventModel{
		Title:       "Concert",
		CategoryID:  1,
		InitiatorID: 1,
		EventDate:   now.Add(3 * time.Hour),
		State:       model.EventStatePending,
	}
	assert.NoError(t, event.Validate())

	// 已发布但没有发布时间
	event.State = model.EventStatePublished
	assert.Error(t, event.Validate())

	// 发布时间与开始时间间隔不足一小时
	publishedOn := now.Add(150 * time.Minute)
	event.PublishedOn = &publishedOn
	assert.Error(t, event.Validate())

	publishedOn = now
	event.PublishedOn = &publishedOn
	assert.NoError(t, event.Validate())

	event.ParticipantLimit = -1
	assert.Error(t, event.Validate())

	event.ParticipantLimit = 0
	event.State = "ARCHIVED"
	assert.Error(t, event.Validate())
}

// TestEventModelAvailable 测试名额判断
func TestEventModelAvailable(t *testing.T) {
	event := &model.EventModel{ParticipantLimit: 0, ConfirmedRequests: 100}
	assert.True(t, event.Available())

	event.ParticipantLimit = 2
	event.ConfirmedRequests = 1
	assert.True(t, event.Available())

	event.ConfirmedRequests = 2
	assert.False(t, event.Available())
}

// TestCommentModelValidation 测试评论模型验证
func TestCommentModelValidation(t *testing.T) {
	comment := &model.CommentModel{Text: "hi", UserID: 1, EventID: 2, Status: model.CommentStatusPublished}
	assert.NoError(t, comment.Validate())
	assert.True(t, comment.Visible())

	comment.Status = model.CommentStatusDeleted
	assert.NoError(t, comment.Validate())
	assert.False(t, comment.Visible())

	comment.Status = "HIDDEN"
	assert.Error(t, comment.Validate())

	assert.Error(t, (&model.CommentModel{UserID: 1, EventID: 1, Status: model.CommentStatusEdited}).Validate())
}

// TestEventStateHistoryValidation 测试状态历史验证
func TestEventStateHistoryValidation(t *testing.T) {
	history := &model.EventStateHistoryModel{
		EventID:  1,
		ToState:  model.EventStatePending,
		Action:   "CREATE",
		Operator: "user:1",
	}
	assert.NoError(t, history.Validate())

	history.Operator = ""
	assert.Error(t, history.Validate())
}

// TestEventURI 测试统计 URI 的构造与解析
func TestEventURI(t *testing.T) {
	assert.Equal(t, "/events/42", model.EventURI(42))

	id, err := model.ParseEventURI("/events/42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = model.ParseEventURI("/events")
	assert.Error(t, err)
	_, err = model.ParseEventURI("/events/abc")
	assert.Error(t, err)
	_, err = model.ParseEventURI("/compilations/1")
	assert.Error(t, err)
}

// TestDateTimeJSON 测试时间格式序列化
func TestDateTimeJSON(t *testing.T) {
	ts := time.Date(2025, 1, 2, 15, 4, 5, 0, time.Local)
	data, err := json.Marshal(model.NewDateTime(ts))
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02 15:04:05"`, string(data))

	var decoded model.DateTime
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, ts.Equal(decoded.Time))

	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, decoded.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"2025-01-02T15:04:05"`), &decoded))

	data, err = json.Marshal(model.DateTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

// TestOptionalJSON 测试稀疏字段解码
func TestOptionalJSON(t *testing.T) {
	var patch struct {
		Title model.Optional[string] `json:"title"`
		Paid  model.Optional[bool]   `json:"paid"`
		Limit model.Optional[int]    `json:"participantLimit"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New title","paid":null}`), &patch))

	title, ok := patch.Title.Get()
	assert.True(t, ok)
	assert.Equal(t, "New title", title)
	assert.False(t, patch.Paid.IsSet())
	assert.False(t, patch.Limit.IsSet())

	paid := true
	patch.Paid.Apply(&paid)
	assert.True(t, paid)

	limit := 5
	model.Set(0).Apply(&limit)
	assert.Equal(t, 0, limit)

	assert.Error(t, json.Unmarshal([]byte(`{"participantLimit":"ten"}`), &patch))
}
