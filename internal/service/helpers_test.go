package service

import (
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
	"github.com/d60-Lab/match-social/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) ofType(typ model.NotificationType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db            *gorm.DB
	clock         *testutil.Clock
	users         repository.UserDirectory
	follows       repository.FollowRepository
	reviews       repository.ReviewRepository
	relations     RelationshipService
	reviewSvc     ReviewService
	likes         LikeService
	comments      CommentService
	notifications NotificationService
	feed          FeedService
}

// newFixture 组装全部服务；publisher 为 nil 时使用 recorder
func newFixture(t *testing.T, publisher EventPublisher) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Second)
	opts := []Option{WithClock(clock.Now)}

	users := repository.NewUserDirectory(db)
	matches := repository.NewMatchDirectory(db)
	follows := repository.NewFollowRepository(db)
	reviews := repository.NewReviewRepository(db)

	return &fixture{
		db:            db,
		clock:         clock,
		users:         users,
		follows:       follows,
		reviews:       reviews,
		relations:     NewRelationshipService(users, follows, publisher, opts...),
		reviewSvc:     NewReviewService(users, matches, reviews, publisher, opts...),
		likes:         NewLikeService(users, reviews, repository.NewLikeRepository(db), publisher, opts...),
		comments:      NewCommentService(users, reviews, repository.NewCommentRepository(db), publisher, opts...),
		notifications: NewNotificationService(repository.NewNotificationRepository(db), 100, opts...),
		feed:          NewFeedService(users, DirectFollowingIndex(follows), reviews, FeedConfig{DefaultPageSize: 10, MaxPageSize: 50, Concurrency: 4}),
	}
}

func strp(s string) *string { return &s }
