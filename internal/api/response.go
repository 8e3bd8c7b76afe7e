package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/gin-gonic/gin"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Status    string `json:"status"`    // HTTP 状态短语,如 NOT_FOUND
	Reason    string `json:"reason"`    // 本地化的错误原因
	Message   string `json:"message"`   // 错误详情
	Timestamp string `json:"timestamp"` // yyyy-MM-dd HH:mm:ss
}

// statusName 返回大写下划线形式的状态短语
func statusName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		text = "Unknown"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// writeError 写入错误响应并中止后续处理
func writeError(c *gin.Context, code int, reason, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:    statusName(code),
		Reason:    reason,
		Message:   message,
		Timestamp: model.FormatDateTime(time.Now()),
	})
}
