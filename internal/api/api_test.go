package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/api"
	"github.com/UserUmbasa/explore-with-me/internal/config"
	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/service"
	"github.com/UserUmbasa/explore-with-me/internal/stats"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// statsServer 记录收到的 hit,并按 uri 返回浏览量
type statsServer struct {
	*httptest.Server
	mu      sync.Mutex
	batches [][]map[string]interface{}
	singles []map[string]interface{}
	views   map[string]int64
}

func newStatsServer(t *testing.T) *statsServer {
	t.Helper()
	s := &statsServer{views: make(map[string]int64)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.URL.Path {
		case "/hit/batch":
			var hits []map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&hits)
			s.batches = append(s.batches, hits)
			w.WriteHeader(http.StatusCreated)
		case "/hit":
			var hit map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&hit)
			s.singles = append(s.singles, hit)
			w.WriteHeader(http.StatusCreated)
		case "/stats":
			var result []stats.ViewStats
			for _, uri := range strings.Split(r.URL.Query().Get("uris"), ",") {
				if hits, ok := s.views[uri]; ok {
					result = append(result, stats.ViewStats{App: "ewm-main-service", URI: uri, Hits: hits})
				}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(result)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	stats  *statsServer
}

type serverOption func(*api.Dependencies)

func setupServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name)), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	ss := newStatsServer(t)
	client, err := stats.NewClient(ss.URL, time.Second)
	require.NoError(t, err)

	translator, err := api.NewTranslator()
	require.NoError(t, err)

	hits := service.NewHitRecorder(client, log, service.HitRecorderOptions{App: "ewm-main-service"})
	t.Cleanup(hits.Close)

	deps := api.Dependencies{
		DB:         db,
		Events:     service.NewEventService(db, service.NewEnricher(db, client, log), log),
		Comments:   service.NewCommentService(db, log),
		Categories: service.NewCategoryService(db, log),
		Users:      service.NewUserService(db, log),
		Hits:       hits,
		Translator: translator,
		Logger:     log,
		CORS:       config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router, err := api.SetupRoutes(deps)
	require.NoError(t, err)
	return &testServer{router: router, db: db, stats: ss}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// createUser 通过管理员接口创建用户
func (s *testServer) createUser(t *testing.T, name string) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/users", map[string]string{"name": name, "email": name + "@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user service.UserDto
	decode(t, w, &user)
	return user.ID
}

func (s *testServer) createCategory(t *testing.T, name string) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/categories", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category service.CategoryDto
	decode(t, w, &category)
	return category.ID
}

func eventBody(categoryID int64, date time.Time) map[string]interface{} {
	return map[string]interface{}{
		"title":       "Concert in the park",
		"annotation":  "An open-air concert for everyone",
		"description": "A long description of the open-air concert in the park",
		"category":    categoryID,
		"eventDate":   date.Format("2006-01-02 15:04:05"),
		"location":    map[string]float64{"lat": 55.75, "lon": 37.61},
	}
}

func (s *testServer) createEvent(t *testing.T, userID, categoryID int64) service.EventFullDto {
	t.Helper()
	w := s.do(t, http.MethodPost, fmt.Sprintf("/users/%d/events", userID), eventBody(categoryID, time.Now().Add(3*time.Hour)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event service.EventFullDto
	decode(t, w, &event)
	return event
}

func (s *testServer) publish(t *testing.T, eventID int64) {
	t.Helper()
	w := s.do(t, http.MethodPatch, fmt.Sprintf("/admin/events/%d", eventID), map[string]string{"stateAction": "PUBLISH_EVENT"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
