package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
	"github.com/d60-Lab/match-social/pkg/logger"
)

// NameResolver 批量解析展示名
type NameResolver interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// DispatcherConfig 投递参数
type DispatcherConfig struct {
	QueueSize   int
	Timeout     time.Duration
	FanoutBatch int
}

type dispatchJob struct {
	event Event
	enqAt time.Time
}

// Dispatcher 本地异步通知投递器：有界队列 + 固定 worker。
// 至多一次：队列满时丢弃，投递失败记录日志后丢弃，不回滚触发方。
type Dispatcher struct {
	notifications NotificationService
	followRepo    repository.FollowRepository
	names         NameResolver
	cfg           DispatcherConfig
	tracer        trace.Tracer

	ch        chan dispatchJob
	metricsCh chan time.Duration
	// mu 串行化入队与停止：停止后不再有事件进入队列
	mu        sync.RWMutex
	stopped   atomic.Bool
	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewDispatcher(notifications NotificationService, followRepo repository.FollowRepository, names NameResolver, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FanoutBatch <= 0 {
		cfg.FanoutBatch = 500
	}
	return &Dispatcher{
		notifications: notifications,
		followRepo:    followRepo,
		names:         names,
		cfg:           cfg,
		tracer:        otel.Tracer("match-social/dispatcher"),
		ch:            make(chan dispatchJob, cfg.QueueSize),
		metricsCh:     make(chan time.Duration, 65536),
	}
}

// Start 启动 worker，返回停止函数；停止时先排空已入队事件
func (d *Dispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-d.ch:
					d.handle(job)
				case <-stopCh:
					for {
						select {
						case job := <-d.ch:
							d.handle(job)
						default:
							return
						}
					}
				}
			}
		}()
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			d.mu.Lock()
			d.stopped.Store(true)
			d.mu.Unlock()
			close(stopCh)
		})
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Publish 非阻塞入队
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped.Load() {
		d.dropped.Add(1)
		logger.Warn("dispatcher stopped, drop event", eventFields(e)...)
		return
	}
	select {
	case d.ch <- dispatchJob{event: e, enqAt: time.Now()}:
	default:
		d.dropped.Add(1)
		logger.Warn("dispatcher queue full, drop event", eventFields(e)...)
	}
}

func (d *Dispatcher) handle(job dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()
	ctx, span := d.tracer.Start(ctx, "notification.dispatch", trace.WithAttributes(
		attribute.String("notification.type", string(job.event.Type)),
		attribute.String("notification.actor", job.event.ActorID),
	))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			sentry.CurrentHub().Recover(r)
			logger.Error("dispatch panic", append(eventFields(job.event), zap.Any("panic", r))...)
		}
	}()

	n, err := d.deliver(ctx, job.event)
	if err != nil {
		d.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sentry.CaptureException(err)
		logger.Error("dispatch notification failed", append(eventFields(job.event), zap.Error(err))...)
		return
	}
	span.SetAttributes(attribute.Int("notification.recipients", n))
	d.delivered.Add(int64(n))
	select {
	case d.metricsCh <- time.Since(job.enqAt):
	default:
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) (int, error) {
	msg := d.render(ctx, e)
	if e.Type != model.NotificationNewReview {
		if e.RecipientID == e.ActorID {
			return 0, nil
		}
		if err := d.notifications.Dispatch(ctx, e.RecipientID, e.ActorID, e.Type, msg, e.TargetID); err != nil {
			return 0, err
		}
		return 1, nil
	}

	// 粉丝分页扇出，接收者在投递时解析
	total := 0
	offset := 0
	for {
		fans, err := d.followRepo.ListFollowers(ctx, e.ActorID, offset, d.cfg.FanoutBatch)
		if err != nil {
			return total, fmt.Errorf("list followers: %w", err)
		}
		if len(fans) == 0 {
			break
		}
		ids := make([]string, len(fans))
		for i, f := range fans {
			ids[i] = f.FollowerID
		}
		n, err := d.notifications.DispatchMany(ctx, ids, e.ActorID, e.Type, msg, e.TargetID)
		total += n
		if err != nil {
			return total, err
		}
		if len(fans) < d.cfg.FanoutBatch {
			break
		}
		offset += d.cfg.FanoutBatch
	}
	return total, nil
}

func (d *Dispatcher) render(ctx context.Context, e Event) string {
	name := "Someone"
	if d.names != nil {
		names, err := d.names.DisplayNames(ctx, []string{e.ActorID})
		if err != nil {
			logger.Warn("resolve actor name failed", zap.String("actor_id", e.ActorID), zap.Error(err))
		} else if n, ok := names[e.ActorID]; ok && n != "" {
			name = n
		}
	}
	return RenderMessage(e.Type, name)
}

// RenderMessage 通知文案
func RenderMessage(typ model.NotificationType, actorName string) string {
	switch typ {
	case model.NotificationFollow:
		return actorName + " started following you"
	case model.NotificationNewReview:
		return actorName + " rated a match"
	case model.NotificationLike:
		return actorName + " liked your review"
	case model.NotificationComment:
		return actorName + " commented on your review"
	}
	return actorName
}

// Metrics 返回投递落地耗时（入队到写入完成）
func (d *Dispatcher) Metrics() <-chan time.Duration { return d.metricsCh }

// QueueLen 当前队列长度（采样值）
func (d *Dispatcher) QueueLen() int { return len(d.ch) }

// DispatcherStats 累计计数
type DispatcherStats struct {
	Delivered int64
	Dropped   int64
	Failed    int64
}

func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Failed:    d.failed.Load(),
	}
}

func eventFields(e Event) []zap.Field {
	return []zap.Field{
		zap.String("type", string(e.Type)),
		zap.String("actor_id", e.ActorID),
		zap.String("recipient_id", e.RecipientID),
		zap.String("target_id", e.TargetID),
	}
}
