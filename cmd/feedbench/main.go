package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
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

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range vs {
		sum += d
	}
	return sum / time.Duration(len(vs))
}

// READERS 个读者各关注 FOLLOWS 个作者，对比直接读库与 redis 关注索引下的动态读取
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	AUTHORS := envInt("AUTHORS", 500)
	READERS := envInt("READERS", 50)
	FOLLOWS := envInt("FOLLOWS", 100)
	REVIEWS := envInt("REVIEWS", 20)
	REQS := envInt("REQS", 3000)

	for _, table := range []string{"notifications", "comments", "likes", "reviews", "follows", "matches", "users"} {
		_ = db.Exec("DELETE FROM " + table).Error
	}

	fmt.Println("Setting up test data...")
	base := time.Now().UTC()
	authors := make([]model.User, AUTHORS)
	for i := range authors {
		authors[i] = model.User{ID: uuid.NewString(), Username: fmt.Sprintf("author_%d", i)}
	}
	readers := make([]model.User, READERS)
	for i := range readers {
		readers[i] = model.User{ID: uuid.NewString(), Username: fmt.Sprintf("reader_%d", i)}
	}
	matches := make([]model.Match, REVIEWS)
	for i := range matches {
		matches[i] = model.Match{ID: fmt.Sprintf("match-%04d", i), KickoffAt: base}
	}
	_ = db.CreateInBatches(&authors, 1000).Error
	_ = db.CreateInBatches(&readers, 1000).Error
	_ = db.CreateInBatches(&matches, 1000).Error

	rng := rand.New(rand.NewSource(42))
	reviews := make([]model.Review, 0, AUTHORS*REVIEWS)
	for i, au := range authors {
		for j := 0; j < REVIEWS; j++ {
			at := base.Add(-time.Duration(i*REVIEWS+j) * time.Minute)
			reviews = append(reviews, model.Review{
				ID: uuid.NewString(), UserID: au.ID, MatchID: matches[j].ID,
				Note: float64(rng.Intn(11)) / 2, WatchedAt: at, CreatedAt: at, UpdatedAt: at,
			})
		}
	}
	_ = db.CreateInBatches(&reviews, 1000).Error
	edges := make([]model.Follow, 0, READERS*FOLLOWS)
	for _, rd := range readers {
		for _, k := range rng.Perm(AUTHORS)[:min(FOLLOWS, AUTHORS)] {
			edges = append(edges, model.Follow{ID: uuid.NewString(), FollowerID: rd.ID, FolloweeID: authors[k].ID, CreatedAt: base})
		}
	}
	_ = db.CreateInBatches(&edges, 1000).Error
	fmt.Printf("Test data ready: %d authors, %d readers, %d reviews, %d follows\n", AUTHORS, READERS, len(reviews), len(edges))

	reqs := make([][2]int, REQS)
	for i := range reqs {
		reqs[i] = [2]int{rng.Intn(READERS), rng.Intn(5)}
	}

	run := func(name string, feed service.FeedService) {
		out := make([]time.Duration, 0, len(reqs))
		for _, r := range reqs {
			st := time.Now()
			if _, err := feed.FullFeed(ctx, readers[r[0]].ID, r[1], 20); err != nil {
				panic(err)
			}
			out = append(out, time.Since(st))
		}
		latest := make([]time.Duration, 0, READERS)
		for _, rd := range readers {
			st := time.Now()
			if _, err := feed.LatestFeed(ctx, rd.ID); err != nil {
				panic(err)
			}
			latest = append(latest, time.Since(st))
		}
		fmt.Printf("%-16s full avg=%v p95=%v p99=%v | latest avg=%v p95=%v\n",
			name, avg(out), pct(out, 0.95), pct(out, 0.99), avg(latest), pct(latest, 0.95))
	}

	direct := app.New(cfg, db, nil)
	run("No cache", direct.Feed)

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Address = addr
	}
	rdb, err := app.NewRedis(ctx, cfg.Redis)
	if err != nil {
		fmt.Printf("redis unavailable at %s, skip cached run: %v\n", cfg.Redis.Address, err)
		return
	}
	defer rdb.Close()
	rdb.FlushDB(ctx)
	cached := app.New(cfg, db, rdb)
	run("Following index", cached.Feed)
	fmt.Printf("index loads=%d\n", cached.FollowCache.IndexLoads())
}
