package service

import (
	"time"

	"github.com/google/uuid"
)

// IDProvider 生成实体主键
type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider 返回 UUIDv7 生成器，同毫秒内仍保持单调
func NewUUIDProvider() IDProvider { return uuidProvider{} }

func (uuidProvider) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type options struct {
	now   func() time.Time
	ids   IDProvider
	index FollowingIndex
}

// Option 服务的可选依赖
type Option func(*options)

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDProvider(p IDProvider) Option {
	return func(o *options) {
		if p != nil {
			o.ids = p
		}
	}
}

// WithFollowingIndex 关注列表读缓存；关注关系变化时由 RelationshipService 失效
func WithFollowingIndex(idx FollowingIndex) Option {
	return func(o *options) { o.index = idx }
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
		ids: NewUUIDProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
