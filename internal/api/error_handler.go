package api

import (
	"errors"
	"net/http"

	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	errTooManyRequests = errors.New("too many requests")
	errRouteNotFound   = errors.New("route not found")
)

// errorMapping 错误类别对应的状态码和原因消息 ID
type errorMapping struct {
	kind   error
	code   int
	reason string
}

var errorMappings = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, "reason_not_found"},
	{errRouteNotFound, http.StatusNotFound, "reason_not_found"},
	{service.ErrNoAccess, http.StatusForbidden, "reason_forbidden"},
	{service.ErrConditionNotMet, http.StatusConflict, "reason_condition_not_met"},
	{service.ErrConflict, http.StatusConflict, "reason_integrity"},
	{service.ErrInvalidRequest, http.StatusBadRequest, "reason_bad_request"},
	{service.ErrValidation, http.StatusBadRequest, "reason_bad_request"},
	{errTooManyRequests, http.StatusTooManyRequests, "reason_too_many_requests"},
}

// classify 返回错误对应的状态码和原因消息 ID,未识别的错误为 500
func classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.code, m.reason
		}
	}
	return http.StatusInternalServerError, "reason_internal"
}

// ErrorHandlerMiddleware 把处理过程中记录的错误转换为统一错误响应
func ErrorHandlerMiddleware(translator *Translator, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		code, reason := classify(err)
		message := err.Error()
		if code == http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString(requestIDKey),
				"path":       c.Request.URL.Path,
			}).Error("unhandled error")
			message = "internal server error"
		}
		writeError(c, code, translator.Translate(c, reason), message)
	}
}

// RecoveryMiddleware 捕获 panic 并返回 500
func RecoveryMiddleware(translator *Translator, log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("panic recovered")
		writeError(c, http.StatusInternalServerError, translator.Translate(c, "reason_internal"), "internal server error")
	})
}

// NotFoundHandler 未匹配路由
func NotFoundHandler(c *gin.Context) {
	fail(c, errRouteNotFound)
}

// fail 记录错误,由 ErrorHandlerMiddleware 统一输出
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
