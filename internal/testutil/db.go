// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/match-social/internal/model"
)

// NewDB opens an isolated in-memory sqlite database with all tables migrated.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUsers inserts users whose id, username and display name are all the given id.
func SeedUsers(tb testing.TB, db *gorm.DB, ids ...string) {
	tb.Helper()
	for _, id := range ids {
		u := model.User{ID: id, Username: id, DisplayName: id}
		if err := db.Create(&u).Error; err != nil {
			tb.Fatalf("seed user %s: %v", id, err)
		}
	}
}

// SeedMatches inserts matches with the given ids.
func SeedMatches(tb testing.TB, db *gorm.DB, ids ...string) {
	tb.Helper()
	for _, id := range ids {
		m := model.Match{ID: id, HomeTeam: "home-" + id, AwayTeam: "away-" + id, KickoffAt: time.Unix(1700000000, 0).UTC()}
		if err := db.Create(&m).Error; err != nil {
			tb.Fatalf("seed match %s: %v", id, err)
		}
	}
}

// Clock is a manually advanced clock for deterministic ordering tests.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock returns a clock starting at start that advances by step on every read.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{now: start, step: step}
}

// Now returns the current fake time and advances it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}
