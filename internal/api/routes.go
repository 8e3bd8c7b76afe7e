package api

import (
	"github.com/UserUmbasa/explore-with-me/internal/config"
	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies 路由依赖
type Dependencies struct {
	DB         *gorm.DB
	Events     service.EventService
	Comments   service.CommentService
	Categories service.CategoryService
	Users      service.UserService
	Hits       service.HitRecorder
	Translator *Translator
	Logger     *logrus.Logger
	CORS       config.CORSConfig
	RateLimit  config.RateLimitConfig
}

// SetupRoutes 配置路由
func SetupRoutes(deps Dependencies) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := service.RegisterValidations(v); err != nil {
			return nil, err
		}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = false

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(deps.Logger))
	router.Use(RecoveryMiddleware(deps.Translator, deps.Logger))
	router.Use(I18nMiddleware())
	router.Use(ErrorHandlerMiddleware(deps.Translator, deps.Logger))
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(deps.CORS))
	router.Use(RateLimitMiddleware(deps.RateLimit.RPS, deps.RateLimit.Burst))

	router.NoRoute(NotFoundHandler)

	health := NewHealthController(deps.DB)
	router.GET("/health", health.Check)
	router.GET("/metrics", MetricsHandler)

	events := NewEventController(deps.Events, deps.Hits)
	comments := NewCommentController(deps.Comments)
	categories := NewCategoryController(deps.Categories)
	users := NewUserController(deps.Users)

	// 公开接口
	public := router.Group("")
	{
		public.GET("/events", events.Search)
		public.GET("/events/:id", events.GetPublished)
		public.GET("/events/:id/comments", comments.ListByEvent)
		public.GET("/events/:id/comments/:commentId", comments.GetPublic)
		public.GET("/categories", categories.List)
		public.GET("/categories/:id", categories.Get)
	}

	// 用户接口
	private := router.Group("/users/:userId")
	{
		private.POST("/events", events.Create)
		private.GET("/events", events.ListByInitiator)
		private.GET("/events/:eventId", events.GetAsInitiator)
		private.PATCH("/events/:eventId", events.UpdateByUser)
		private.POST("/events/:eventId/comments", comments.Create)
		private.GET("/comments", comments.ListByUser)
		private.PATCH("/comments/:commentId", comments.Update)
		private.DELETE("/comments/:commentId", comments.DeleteByUser)
	}

	// 管理员接口
	admin := router.Group("/admin")
	{
		admin.GET("/events", events.SearchAdmin)
		admin.PATCH("/events/:id", events.UpdateByAdmin)
		admin.GET("/events/:id/history", events.History)

		admin.GET("/comments", comments.ListAdmin)
		admin.DELETE("/comments/:id", comments.DeleteByAdmin)

		admin.POST("/categories", categories.Create)
		admin.PATCH("/categories/:id", categories.Update)
		admin.DELETE("/categories/:id", categories.Delete)

		admin.POST("/users", users.Create)
		admin.GET("/users", users.List)
		admin.DELETE("/users/:id", users.Delete)
	}

	return router, nil
}
