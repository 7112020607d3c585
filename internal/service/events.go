package service

import (
	"time"

	"github.com/d60-Lab/match-social/internal/model"
)

// Event 业务事件，由 Dispatcher 异步转为通知
type Event struct {
	Type    model.NotificationType
	ActorID string
	// RecipientID 为空表示由投递侧解析接收者（NEW_REVIEW 发给作者的全部粉丝）
	RecipientID string
	TargetID    string
	OccurredAt  time.Time
}

// EventPublisher 只负责入队，不返回错误，也不阻塞调用方
type EventPublisher interface {
	Publish(Event)
}

// PublisherFunc 函数适配
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// NopPublisher 丢弃全部事件
func NopPublisher() EventPublisher { return nopPublisher{} }

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
