package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/match-social/config"
	"github.com/d60-Lab/match-social/internal/app"
	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/service"
	"github.com/d60-Lab/match-social/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// 一个作者 + N 个粉丝，作者连续发布 REVIEWS 条评分，统计 NEW_REVIEW 扇出落地耗时
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	N := envInt("N", 20000)
	REVIEWS := envInt("REVIEWS", 50)
	WORKERS := envInt("WORKERS", 8)
	BATCH := envInt("BATCH", 1000)
	cfg.Notification.FanoutBatch = BATCH
	cfg.Notification.QueueSize = REVIEWS * 2

	for _, table := range []string{"notifications", "comments", "likes", "reviews", "follows", "matches", "users"} {
		_ = db.Exec("DELETE FROM " + table).Error
	}

	author := model.User{ID: "author0", Username: "author0", DisplayName: "Author"}
	_ = db.Create(&author).Error
	fans := make([]model.User, N)
	edges := make([]model.Follow, N)
	base := time.Now().UTC()
	for i := 0; i < N; i++ {
		id := uuid.NewString()
		fans[i] = model.User{ID: id, Username: "u" + id[:8]}
		edges[i] = model.Follow{ID: uuid.NewString(), FollowerID: id, FolloweeID: author.ID, CreatedAt: base}
	}
	_ = db.CreateInBatches(&fans, 1000).Error
	_ = db.CreateInBatches(&edges, 1000).Error
	matches := make([]model.Match, REVIEWS)
	for i := range matches {
		matches[i] = model.Match{ID: fmt.Sprintf("match-%04d", i), HomeTeam: "home", AwayTeam: "away", KickoffAt: base}
	}
	_ = db.CreateInBatches(&matches, 1000).Error

	a := app.New(cfg, db, nil)
	stop := a.Start(WORKERS)

	upserts := make([]time.Duration, 0, REVIEWS)
	for i := 0; i < REVIEWS; i++ {
		st := time.Now()
		_, err := a.Review.Upsert(ctx, service.UpsertReviewInput{UserID: author.ID, MatchID: matches[i].ID, Note: 4})
		if err != nil {
			panic(err)
		}
		upserts = append(upserts, time.Since(st))
	}

	land := make([]time.Duration, 0, REVIEWS)
	timeout := time.After(5 * time.Minute)
collect:
	for len(land) < REVIEWS {
		select {
		case d := <-a.Dispatcher.Metrics():
			land = append(land, d)
		case <-timeout:
			fmt.Printf("timeout while waiting for fanout metrics: got=%d want=%d\n", len(land), REVIEWS)
			break collect
		}
	}
	_ = stop(ctx)

	var upSum, landSum time.Duration
	for _, d := range upserts {
		upSum += d
	}
	for _, d := range land {
		landSum += d
	}
	fmt.Printf("N=%d REVIEWS=%d WORKERS=%d BATCH=%d\n", N, REVIEWS, WORKERS, BATCH)
	fmt.Printf("Upsert latency: avg=%v p95=%v p99=%v\n", upSum/time.Duration(len(upserts)), pct(upserts, 0.95), pct(upserts, 0.99))
	if len(land) > 0 {
		fmt.Printf("Fanout landing (enqueue->stored): samples=%d avg=%v p95=%v p99=%v\n", len(land), landSum/time.Duration(len(land)), pct(land, 0.95), pct(land, 0.99))
	}
	stats := a.Dispatcher.Stats()
	fmt.Printf("Dispatcher: delivered=%d dropped=%d failed=%d\n", stats.Delivered, stats.Dropped, stats.Failed)

	if len(fans) > 0 {
		st := time.Now()
		list, _ := a.Notification.ListForUser(ctx, fans[0].ID)
		fmt.Printf("Notification list read (fan0): %v, rows=%d\n", time.Since(st), len(list))
	}
}
