package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/testutil"
)

func reviewIDs(list []*model.Review) []string {
	out := make([]string, len(list))
	for i, rv := range list {
		out[i] = rv.ID
	}
	return out
}

func TestFeedPagination(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "me", "ann", "ben", "stranger")
	testutil.SeedMatches(t, f.db, "m1", "m2", "m3")
	ctx := context.Background()

	_, err := f.relations.Follow(ctx, "me", "ann")
	require.NoError(t, err)
	_, err = f.relations.Follow(ctx, "me", "ben")
	require.NoError(t, err)

	// 时钟单调递增，写入顺序即 watched_at 顺序
	var written []string
	for _, in := range []UpsertReviewInput{
		{UserID: "ann", MatchID: "m1", Note: 3},
		{UserID: "ben", MatchID: "m1", Note: 4},
		{UserID: "stranger", MatchID: "m1", Note: 1},
		{UserID: "ann", MatchID: "m2", Note: 5},
		{UserID: "ben", MatchID: "m3", Note: 2},
	} {
		rv, err := f.reviewSvc.Upsert(ctx, in)
		require.NoError(t, err)
		if in.UserID != "stranger" {
			written = append(written, rv.ID)
		}
	}
	newestFirst := []string{written[3], written[2], written[1], written[0]}

	page0, err := f.feed.FullFeed(ctx, "me", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, newestFirst[:3], reviewIDs(page0))

	page1, err := f.feed.FullFeed(ctx, "me", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, newestFirst[3:], reviewIDs(page1))

	page9, err := f.feed.FullFeed(ctx, "me", 9, 3)
	require.NoError(t, err)
	assert.Empty(t, page9)

	neg, err := f.feed.FullFeed(ctx, "me", -1, 0)
	require.NoError(t, err)
	assert.Equal(t, newestFirst, reviewIDs(neg))

	none, err := f.feed.FullFeed(ctx, "stranger", 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLatestFeedOnePerFollowedUser(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "me", "ann", "ben", "quiet")
	testutil.SeedMatches(t, f.db, "m1", "m2")
	ctx := context.Background()

	for _, u := range []string{"ann", "ben", "quiet"} {
		_, err := f.relations.Follow(ctx, "me", u)
		require.NoError(t, err)
	}
	_, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "ann", MatchID: "m1", Note: 3})
	require.NoError(t, err)
	benLatest, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "ben", MatchID: "m1", Note: 3})
	require.NoError(t, err)
	annLatest, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "ann", MatchID: "m2", Note: 3})
	require.NoError(t, err)

	latest, err := f.feed.LatestFeed(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, []string{annLatest.ID, benLatest.ID}, reviewIDs(latest))
}

func TestFeedUnknownUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.feed.FullFeed(ctx, "ghost", 0, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.feed.LatestFeed(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFeedHugePageIsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "me", "ann")
	testutil.SeedMatches(t, f.db, "m1", "m2")
	ctx := context.Background()

	_, err := f.relations.Follow(ctx, "me", "ann")
	require.NoError(t, err)
	for _, m := range []string{"m1", "m2"} {
		_, err := f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "ann", MatchID: m, Note: 4})
		require.NoError(t, err)
	}

	// page*pageSize 会溢出为负数
	list, err := f.feed.FullFeed(ctx, "me", math.MaxInt/10+1, 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, err = f.feed.FullFeed(ctx, "me", math.MaxInt, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFeedPageSizeClampedToMax(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedUsers(t, f.db, "me", "ann")
	testutil.SeedMatches(t, f.db, "m1")
	ctx := context.Background()

	_, err := f.relations.Follow(ctx, "me", "ann")
	require.NoError(t, err)
	_, err = f.reviewSvc.Upsert(ctx, UpsertReviewInput{UserID: "ann", MatchID: "m1", Note: 4})
	require.NoError(t, err)

	// MaxPageSize 为 50：page 1 的窗口从 50 开始
	list, err := f.feed.FullFeed(ctx, "me", 0, 1000)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = f.feed.FullFeed(ctx, "me", 1, 1000)
	require.NoError(t, err)
	assert.Empty(t, list)
}
