package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/metrics"
	"github.com/UserUmbasa/explore-with-me/internal/model"
)

// QueryTimeLayout GET /stats 的 start/end 格式
const QueryTimeLayout = "2006-01-02T15:04:05"

// ErrInvalidRange start 晚于 end
var ErrInvalidRange = errors.New("stats start must not be after end")

// EndpointHit 一次接口访问记录
type EndpointHit struct {
	App       string         `json:"app"`
	URI       string         `json:"uri"`
	IP        string         `json:"ip"`
	Timestamp model.DateTime `json:"timestamp"`
}

// ViewStats 按 URI 聚合的访问量
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Client 统计服务客户端
type Client interface {
	SaveHit(ctx context.Context, hit EndpointHit) error
	SaveHits(ctx context.Context, hits []EndpointHit) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// StatusError 统计服务返回非 2xx
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stats service %s %s returned status code: %d", e.Method, e.Path, e.Code)
}

// httpClient 基于 net/http 的统计服务客户端
type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建统计服务客户端
func NewClient(baseURL string, timeout time.Duration) (Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid stats server url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SaveHit POST /hit
func (c *httpClient) SaveHit(ctx context.Context, hit EndpointHit) error {
	if err := c.post(ctx, "/hit", hit); err != nil {
		metrics.RecordStatsFailure("hit")
		return err
	}
	return nil
}

// SaveHits POST /hit/batch,空列表不发送请求
func (c *httpClient) SaveHits(ctx context.Context, hits []EndpointHit) error {
	if len(hits) == 0 {
		return nil
	}
	if err := c.post(ctx, "/hit/batch", hits); err != nil {
		metrics.RecordStatsFailure("batch")
		return err
	}
	return nil
}

// GetStats GET /stats
func (c *httpClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	query := url.Values{}
	query.Set("start", start.In(time.Local).Format(QueryTimeLayout))
	query.Set("end", end.In(time.Local).Format(QueryTimeLayout))
	query.Set("unique", strconv.FormatBool(unique))
	if len(uris) > 0 {
		query.Set("uris", strings.Join(uris, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordStatsFailure("stats")
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordStatsFailure("stats")
		return nil, &StatusError{Method: http.MethodGet, Path: "/stats", Code: resp.StatusCode}
	}

	var result []ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		metrics.RecordStatsFailure("stats")
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	return result, nil
}

func (c *httpClient) post(ctx context.Context, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodPost, Path: path, Code: resp.StatusCode}
	}
	return nil
}
