package container

import (
	"fmt"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/api"
	"github.com/UserUmbasa/explore-with-me/internal/config"
	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/logger"
	"github.com/UserUmbasa/explore-with-me/internal/metrics"
	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/UserUmbasa/explore-with-me/internal/stats"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	config     *config.Config
	log        *logrus.Logger
	db         *gorm.DB
	stats      stats.Client
	hits       service.HitRecorder
	events     service.EventService
	comments   service.CommentService
	categories service.CategoryService
	users      service.UserService
	translator *api.Translator
	collector  *metrics.Collector
}

// NewContainer 按配置组装应用依赖
func NewContainer(cfg *config.Config) (*Container, error) {
	log, err := logger.NewFromConfig(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)

	db, err := database.ConnectWithRetry(cfg.Database, log, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return newContainer(cfg, log, db)
}

// NewContainerWithDB 使用已有连接组装依赖,测试中传入 sqlite
func NewContainerWithDB(cfg *config.Config, log *logrus.Logger, db *gorm.DB) (*Container, error) {
	return newContainer(cfg, log, db)
}

func newContainer(cfg *config.Config, log *logrus.Logger, db *gorm.DB) (*Container, error) {
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	client, err := stats.NewClient(cfg.Stats.Server.URL, time.Duration(cfg.Stats.Timeout)*time.Second)
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to create stats client: %w", err)
	}

	translator, err := api.NewTranslator()
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	enricher := service.NewEnricher(db, client, log)
	c := &Container{
		config: cfg,
		log:    log,
		db:     db,
		stats:  client,
		hits: service.NewHitRecorder(client, log, service.HitRecorderOptions{
			App:       cfg.Stats.App,
			Workers:   cfg.Hits.Workers,
			QueueSize: cfg.Hits.QueueSize,
		}),
		events:     service.NewEventService(db, enricher, log),
		comments:   service.NewCommentService(db, log),
		categories: service.NewCategoryService(db, log),
		users:      service.NewUserService(db, log),
		translator: translator,
	}

	if cfg.Metrics.CollectInterval > 0 {
		c.collector = metrics.NewCollector(db, log, time.Duration(cfg.Metrics.CollectInterval)*time.Second)
		c.collector.Start()
	}
	return c, nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger 获取日志器
func (c *Container) Logger() *logrus.Logger {
	return c.log
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Events 获取事件服务
func (c *Container) Events() service.EventService {
	return c.events
}

// Comments 获取评论服务
func (c *Container) Comments() service.CommentService {
	return c.comments
}

// Categories 获取分类服务
func (c *Container) Categories() service.CategoryService {
	return c.categories
}

// Users 获取用户服务
func (c *Container) Users() service.UserService {
	return c.users
}

// Hits 获取访问记录器
func (c *Container) Hits() service.HitRecorder {
	return c.hits
}

// Router 构建 HTTP 路由
func (c *Container) Router() (*gin.Engine, error) {
	return api.SetupRoutes(api.Dependencies{
		DB:         c.db,
		Events:     c.events,
		Comments:   c.comments,
		Categories: c.categories,
		Users:      c.users,
		Hits:       c.hits,
		Translator: c.translator,
		Logger:     c.log,
		CORS:       c.config.CORS,
		RateLimit:  c.config.RateLimit,
	})
}

// Close 关闭容器持有的资源
// 先排空访问记录队列,再关闭数据库
func (c *Container) Close() {
	c.hits.Close()
	if c.collector != nil {
		c.collector.Stop()
	}
	database.Close(c.db)
}
