package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/testutil"
)

func strPtr(s string) *string { return &s }

func newReview(id, userID, matchID string, note float64, at time.Time) *model.Review {
	return &model.Review{ID: id, UserID: userID, MatchID: matchID, Note: note, WatchedAt: at, CreatedAt: at, UpdatedAt: at}
}

func TestReviewRepositoryUpsertKeepsOneRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	at := time.Unix(1700000000, 0).UTC()

	stored, created, err := repo.Upsert(ctx, newReview("r1", "u1", "m1", 3, at))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r1", stored.ID)

	again := newReview("r2", "u1", "m1", 4.5, at.Add(time.Hour))
	again.Comment = strPtr("second look")
	again.LikedByOwner = true
	stored, created, err = repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r1", stored.ID)
	assert.Equal(t, 4.5, stored.Note)
	assert.True(t, stored.LikedByOwner)
	// watched_at 不随重评变化
	assert.True(t, stored.WatchedAt.Equal(at))

	var cnt int64
	require.NoError(t, db.Model(&model.Review{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestReviewRepositoryModerateAndUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	at := time.Unix(1700000000, 0).UTC()

	rv := newReview("r1", "u1", "m1", 3, at)
	rv.Comment = strPtr("rude words")
	rv.LikesCount = 2
	_, _, err := repo.Upsert(ctx, rv)
	require.NoError(t, err)

	moderated, err := repo.Moderate(ctx, "r1", "removed", at)
	require.NoError(t, err)
	assert.True(t, moderated.IsModerated)
	require.NotNil(t, moderated.Comment)
	assert.Equal(t, "removed", *moderated.Comment)
	assert.Equal(t, 3.0, moderated.Note)
	assert.EqualValues(t, 2, moderated.LikesCount)

	updated, err := repo.UpdateContent(ctx, "r1", 1.5, nil, at)
	require.NoError(t, err)
	assert.Equal(t, 1.5, updated.Note)
	assert.Nil(t, updated.Comment)
	assert.True(t, updated.IsModerated)

	_, err = repo.Moderate(ctx, "missing", "removed", at)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.UpdateContent(ctx, "missing", 1, nil, at)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReviewRepositoryDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	reviews := NewReviewRepository(db)
	likes := NewLikeRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()
	at := time.Unix(1700000000, 0).UTC()

	_, _, err := reviews.Upsert(ctx, newReview("r1", "u1", "m1", 3, at))
	require.NoError(t, err)
	_, _, err = reviews.Upsert(ctx, newReview("r2", "u1", "m2", 3, at))
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, &model.Like{ID: "l1", UserID: "u2", ReviewID: "r1"})
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, &model.Like{ID: "l2", UserID: "u2", ReviewID: "r2"})
	require.NoError(t, err)
	require.NoError(t, comments.Create(ctx, &model.Comment{ID: "c1", ReviewID: "r1", UserID: "u2", Content: "nice", CreatedAt: at}))

	require.NoError(t, reviews.Delete(ctx, "r1"))
	require.ErrorIs(t, reviews.Delete(ctx, "r1"), ErrNotFound)

	n, err := likes.CountByReview(ctx, "r1")
	require.NoError(t, err)
	assert.Zero(t, n)
	list, err := comments.ListByReview(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, list)

	// 其他评分不受影响
	n, err = likes.CountByReview(ctx, "r2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestReviewRepositoryFeedQueries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	_, _, err := repo.Upsert(ctx, newReview("a1", "a", "m1", 3, base))
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, newReview("a2", "a", "m2", 3, base.Add(2*time.Minute)))
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, newReview("b1", "b", "m1", 3, base.Add(time.Minute)))
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, newReview("c1", "c", "m1", 3, base.Add(3*time.Minute)))
	require.NoError(t, err)

	list, err := repo.ListByUsers(ctx, []string{"a", "b"}, 0, 10)
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, rv := range list {
		ids[i] = rv.ID
	}
	assert.Equal(t, []string{"a2", "b1", "a1"}, ids)

	list, err = repo.ListByUsers(ctx, []string{"a", "b"}, 2, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.ListByUsers(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	latest, err := repo.LatestByUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a2", latest.ID)

	_, err = repo.LatestByUser(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}
