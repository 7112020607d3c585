package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/testutil"
)

type countingIndex struct {
	FollowingIndex
	invalidated []string
}

func (c *countingIndex) Invalidate(ctx context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestFollowEmitsEventAndRejectsDuplicates(t *testing.T) {
	rec := &recorder{}
	f := newFixture(t, rec)
	testutil.SeedUsers(t, f.db, "alice", "bob")
	ctx := context.Background()

	edge, err := f.relations.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	events := rec.ofType(model.NotificationFollow)
	require.Len(t, events, 1)
	assert.Equal(t, "bob", events[0].RecipientID)
	assert.Equal(t, "alice", events[0].ActorID)
	assert.Equal(t, edge.ID, events[0].TargetID)

	_, err = f.relations.Follow(ctx, "alice", "bob")
	require.ErrorIs(t, err, ErrAlreadyFollowing)
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Len(t, rec.ofType(model.NotificationFollow), 1)

	following, err := f.relations.ListFollowing(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, following)
	followers, err := f.relations.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followers)
}

func TestFollowValidation(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "alice")
	ctx := context.Background()

	_, err := f.relations.Follow(ctx, "alice", "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.relations.Follow(ctx, "ghost", "alice")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.relations.Follow(ctx, "alice", "alice")
	require.ErrorIs(t, err, ErrFollowSelf)

	_, err = f.relations.ListFollowers(ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, f.relations.Unfollow(ctx, "alice", "ghost"), ErrUserNotFound)
}

func TestUnfollowIsSilentAndInvalidatesIndex(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "alice", "bob")
	idx := &countingIndex{FollowingIndex: DirectFollowingIndex(f.follows)}
	rec := &recorder{}
	svc := NewRelationshipService(f.users, f.follows, rec, WithFollowingIndex(idx))
	ctx := context.Background()

	require.NoError(t, svc.Unfollow(ctx, "alice", "bob"))
	assert.Empty(t, idx.invalidated)

	_, err := svc.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Unfollow(ctx, "alice", "bob"))
	assert.Equal(t, []string{"alice", "alice"}, idx.invalidated)

	counts, err := svc.Counts(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, counts.Followers)
	// 取消关注不产生通知
	assert.Len(t, rec.ofType(model.NotificationFollow), 1)
}

func TestFollowCounts(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "a", "b", "c")
	ctx := context.Background()

	for _, pair := range [][2]string{{"a", "b"}, {"c", "b"}, {"b", "a"}} {
		_, err := f.relations.Follow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}
	counts, err := f.relations.Counts(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, FollowCounts{Following: 1, Followers: 2}, counts)
}
