package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/testutil"
	"github.com/d60-Lab/match-social/pkg/logger"
)

// newDispatchFixture 服务经由真实 Dispatcher 投递通知
func newDispatchFixture(t *testing.T, batch int) (*fixture, *Dispatcher, func(context.Context) error) {
	t.Helper()
	var d *Dispatcher
	f := newFixture(t, PublisherFunc(func(e Event) { d.Publish(e) }))
	d = NewDispatcher(f.notifications, f.follows, f.users, DispatcherConfig{QueueSize: 64, Timeout: time.Second, FanoutBatch: batch})
	stop := d.Start(2)
	t.Cleanup(func() { _ = stop(context.Background()) })
	return f, d, stop
}

func notificationsOf(t *testing.T, f *fixture, userID string, typ model.NotificationType) []*model.Notification {
	t.Helper()
	list, err := f.notifications.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	var out []*model.Notification
	for _, n := range list {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func countNotifications(f *fixture, userID string, typ model.NotificationType) int {
	var n int64
	f.db.Model(&model.Notification{}).Where("recipient_id = ? AND type = ?", userID, typ).Count(&n)
	return int(n)
}

func TestFollowThenReviewNotifiesFollower(t *testing.T) {
	f, _, _ := newDispatchFixture(t, 500)
	testutil.SeedUsers(t, f.db, "amy", "bob")
	testutil.SeedMatches(t, f.db, "m1")
	ctx := context.Background()

	edge, err := f.relations.Follow(ctx, "amy", "bob")
	require.NoError(t, err)
	rv, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "bob", MatchID: "m1", Note: 4.5})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return countNotifications(f, "amy", model.NotificationNewReview) == 1
	}, 2*time.Second, 10*time.Millisecond)

	got := notificationsOf(t, f, "amy", model.NotificationNewReview)[0]
	assert.Equal(t, "bob", got.ActorID)
	assert.Equal(t, rv.ID, got.TargetID)
	assert.Equal(t, "bob rated a match", got.Message)
	assert.False(t, got.IsRead)

	assert.Eventually(t, func() bool {
		return countNotifications(f, "bob", model.NotificationFollow) == 1
	}, 2*time.Second, 10*time.Millisecond)
	follow := notificationsOf(t, f, "bob", model.NotificationFollow)[0]
	assert.Equal(t, edge.ID, follow.TargetID)
	assert.Equal(t, "amy started following you", follow.Message)

	// 作者本人不会收到自己的新评分通知
	assert.Empty(t, notificationsOf(t, f, "bob", model.NotificationNewReview))
}

func TestDoubleLikeLeavesSingleNotification(t *testing.T) {
	f, _, stop := newDispatchFixture(t, 500)
	testutil.SeedUsers(t, f.db, "amy", "bob")
	testutil.SeedMatches(t, f.db, "m1")
	ctx := context.Background()

	rv, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "bob", MatchID: "m1", Note: 3})
	require.NoError(t, err)
	_, err = f.likes.ToggleLike(ctx, rv.ID, "amy")
	require.NoError(t, err)
	res, err := f.likes.ToggleLike(ctx, rv.ID, "amy")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Zero(t, res.LikesCount)
	_, err = f.likes.ToggleLike(ctx, rv.ID, "bob")
	require.NoError(t, err)

	require.NoError(t, stop(ctx))
	likes := notificationsOf(t, f, "bob", model.NotificationLike)
	require.Len(t, likes, 1)
	assert.Equal(t, "amy liked your review", likes[0].Message)
}

func TestNewReviewFansOutInBatches(t *testing.T) {
	f, d, stop := newDispatchFixture(t, 2)
	testutil.SeedUsers(t, f.db, "star")
	testutil.SeedMatches(t, f.db, "m1")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("fan-%d", i)
		testutil.SeedUsers(t, f.db, id)
		_, err := f.relations.Follow(ctx, id, "star")
		require.NoError(t, err)
	}
	_, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "star", MatchID: "m1", Note: 5})
	require.NoError(t, err)
	require.NoError(t, stop(ctx))

	var n int64
	require.NoError(t, f.db.Model(&model.Notification{}).Where("type = ?", model.NotificationNewReview).Count(&n).Error)
	assert.EqualValues(t, 5, n)
	// 5 条 FOLLOW + 5 条 NEW_REVIEW
	assert.EqualValues(t, 10, d.Stats().Delivered)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.notifications, f.follows, f.users, DispatcherConfig{QueueSize: 1})

	for i := 0; i < 3; i++ {
		d.Publish(Event{Type: model.NotificationFollow, ActorID: "a", RecipientID: "b", TargetID: "e"})
	}
	assert.Equal(t, 1, d.QueueLen())
	assert.EqualValues(t, 2, d.Stats().Dropped)

	stop := d.Start(1)
	require.NoError(t, stop(context.Background()))
	assert.Zero(t, d.QueueLen())

	d.Publish(Event{Type: model.NotificationFollow, ActorID: "a", RecipientID: "b", TargetID: "e"})
	assert.EqualValues(t, 3, d.Stats().Dropped)
}

type failingNotifications struct {
	NotificationService
}

func (failingNotifications) Dispatch(context.Context, string, string, model.NotificationType, string, string) error {
	return errors.New("db down")
}

func TestDispatcherLogsAndDropsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	f := newFixture(t, nil)
	d := NewDispatcher(failingNotifications{}, f.follows, nil, DispatcherConfig{QueueSize: 4})
	stop := d.Start(1)
	d.Publish(Event{Type: model.NotificationLike, ActorID: "a", RecipientID: "b", TargetID: "r"})
	require.NoError(t, stop(context.Background()))

	assert.EqualValues(t, 1, d.Stats().Failed)
	assert.Equal(t, 1, logs.FilterMessage("dispatch notification failed").Len())
}

func TestDispatcherAccountsForEventsPublishedDuringStop(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(failingNotifications{}, f.follows, nil, DispatcherConfig{QueueSize: 4096})
	stop := d.Start(2)

	const publishers, perPublisher = 8, 200
	var wg sync.WaitGroup
	start := make(chan struct{})
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < perPublisher; i++ {
				d.Publish(Event{Type: model.NotificationLike, ActorID: "a", RecipientID: "b", TargetID: "r"})
			}
		}()
	}
	close(start)
	require.NoError(t, stop(context.Background()))
	wg.Wait()

	// 每个事件要么被处理，要么计入 Dropped
	st := d.Stats()
	assert.Zero(t, d.QueueLen())
	assert.EqualValues(t, publishers*perPublisher, st.Failed+st.Dropped+st.Delivered)
}

func TestRenderMessage(t *testing.T) {
	assert.Equal(t, "Ann commented on your review", RenderMessage(model.NotificationComment, "Ann"))
	assert.Equal(t, "Ann liked your review", RenderMessage(model.NotificationLike, "Ann"))
}
