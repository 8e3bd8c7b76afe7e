package service

import (
	"context"
	"sync"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/metrics"
	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/stats"
	"github.com/sirupsen/logrus"
)

// HitRecorder 记录公开接口的访问
// 上报失败只记录日志,不影响调用方
type HitRecorder interface {
	RecordEvent(ctx context.Context, ip string, eventID int64)
	RecordEvents(ctx context.Context, ip string, eventIDs []int64)
	Close()
}

// HitRecorderOptions 访问记录器参数
type HitRecorderOptions struct {
	App       string
	Workers   int // 0 表示在调用方 goroutine 中同步上报
	QueueSize int
}

type hitJob struct {
	ctx   context.Context
	hits  []stats.EndpointHit
	batch bool
}

// hitRecorder 基于有界队列和 worker 池的实现,队列满时丢弃
type hitRecorder struct {
	client stats.Client
	log    *logrus.Logger
	app    string
	now    func() time.Time

	queue   chan hitJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	workers int
}

// NewHitRecorder 创建访问记录器
func NewHitRecorder(client stats.Client, log *logrus.Logger, opts HitRecorderOptions) HitRecorder {
	r := &hitRecorder{
		client:  client,
		log:     log,
		app:     opts.App,
		now:     time.Now,
		workers: opts.Workers,
	}
	if r.workers > 0 {
		size := opts.QueueSize
		if size <= 0 {
			size = 1000
		}
		r.queue = make(chan hitJob, size)
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go r.worker()
		}
	}
	return r
}

// RecordEvent 记录单个事件的访问
func (r *hitRecorder) RecordEvent(ctx context.Context, ip string, eventID int64) {
	r.submit(ctx, []stats.EndpointHit{r.hit(ip, model.EventURI(eventID))}, false)
}

// RecordEvents 记录列表访问: 每个结果一条,外加集合接口一条
func (r *hitRecorder) RecordEvents(ctx context.Context, ip string, eventIDs []int64) {
	hits := make([]stats.EndpointHit, 0, len(eventIDs)+1)
	for _, id := range eventIDs {
		hits = append(hits, r.hit(ip, model.EventURI(id)))
	}
	hits = append(hits, r.hit(ip, model.EventsURI))
	r.submit(ctx, hits, true)
}

// Close 停止接收新任务并等待队列排空
func (r *hitRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.queue != nil {
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *hitRecorder) hit(ip, uri string) stats.EndpointHit {
	return stats.EndpointHit{
		App:       r.app,
		URI:       uri,
		IP:        ip,
		Timestamp: model.NewDateTime(r.now().In(time.Local).Truncate(time.Second)),
	}
}

func (r *hitRecorder) submit(ctx context.Context, hits []stats.EndpointHit, batch bool) {
	if r.workers == 0 {
		r.send(ctx, hits, batch)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.log.WithField("hits", len(hits)).Warn("hit recorder closed, dropping hits")
		metrics.RecordHits("dropped", len(hits))
		return
	}

	job := hitJob{ctx: context.WithoutCancel(ctx), hits: hits, batch: batch}
	select {
	case r.queue <- job:
	default:
		r.log.WithField("hits", len(hits)).Warn("hit queue full, dropping hits")
		metrics.RecordHits("dropped", len(hits))
	}
}

func (r *hitRecorder) worker() {
	defer r.wg.Done()
	for job := range r.queue {
		r.send(job.ctx, job.hits, job.batch)
	}
}

// send 单个事件直接 POST /hit;列表访问总是先走批量接口,失败后逐条补发
func (r *hitRecorder) send(ctx context.Context, hits []stats.EndpointHit, batch bool) {
	if !batch {
		for _, h := range hits {
			r.sendOne(ctx, h)
		}
		return
	}

	err := r.client.SaveHits(ctx, hits)
	if err == nil {
		metrics.RecordHits("batch", len(hits))
		return
	}
	r.log.WithError(err).WithField("hits", len(hits)).Warn("batch hit failed, falling back to single hits")
	for _, h := range hits {
		r.sendOne(ctx, h)
	}
}

func (r *hitRecorder) sendOne(ctx context.Context, hit stats.EndpointHit) {
	if err := r.client.SaveHit(ctx, hit); err != nil {
		r.log.WithError(err).WithField("uri", hit.URI).Error("failed to record hit")
		metrics.RecordHits("failed", 1)
		return
	}
	metrics.RecordHits("single", 1)
}
