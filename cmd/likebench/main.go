package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
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

// N 个用户并发对同一条评分切换点赞 ROUNDS 次，检查计数与点赞表一致
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	N := envInt("N", 2000)
	CONC := envInt("CONC", 16)
	ROUNDS := envInt("ROUNDS", 3)

	for _, table := range []string{"notifications", "comments", "likes", "reviews", "follows", "matches", "users"} {
		_ = db.Exec("DELETE FROM " + table).Error
	}

	owner := model.User{ID: "owner0", Username: "owner0"}
	_ = db.Create(&owner).Error
	_ = db.Create(&model.Match{ID: "match0", HomeTeam: "home", AwayTeam: "away", KickoffAt: time.Now().UTC()}).Error
	users := make([]model.User, N)
	for i := 0; i < N; i++ {
		id := uuid.NewString()
		users[i] = model.User{ID: id, Username: "u" + id[:8]}
	}
	_ = db.CreateInBatches(&users, 1000).Error

	a := app.New(cfg, db, nil)
	stop := a.Start(cfg.Notification.Workers)
	defer stop(ctx) //nolint:errcheck

	review := must(a.Review.Upsert(ctx, service.UpsertReviewInput{UserID: owner.ID, MatchID: "match0", Note: 3}))

	feed := make(chan int, N*ROUNDS)
	for r := 0; r < ROUNDS; r++ {
		for i := 0; i < N; i++ {
			feed <- i
		}
	}
	close(feed)

	var (
		mu   sync.Mutex
		recs = make([]time.Duration, 0, N*ROUNDS)
		errs int
		wg   sync.WaitGroup
	)
	t0 := time.Now()
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				st := time.Now()
				_, err := a.Like.ToggleLike(ctx, review.ID, users[i].ID)
				d := time.Since(st)
				mu.Lock()
				recs = append(recs, d)
				if err != nil {
					errs++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(t0)

	var likes int64
	_ = db.Model(&model.Like{}).Where("review_id = ?", review.ID).Count(&likes).Error
	stored := must(a.Review.Get(ctx, review.ID))

	fmt.Printf("N=%d CONC=%d ROUNDS=%d\n", N, CONC, ROUNDS)
	fmt.Printf("Toggle latency total: %v, per op: %v, p50: %v, p95: %v, p99: %v, errors=%d\n",
		total, total/time.Duration(len(recs)), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99), errs)
	fmt.Printf("likes rows=%d likes_count=%d consistent=%v\n", likes, stored.LikesCount, likes == stored.LikesCount)
}
