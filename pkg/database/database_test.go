package database

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/match-social/config"
	"github.com/d60-Lab/match-social/internal/model"
)

func TestInitDBSQLiteMigrates(t *testing.T) {
	v := viper.New()
	config.ApplyDefaults(v)
	v.Set("database.file_path", filepath.Join(t.TempDir(), "nested", "test.db"))
	v.Set("database.log_level", "silent")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	db, err := InitDB(cfg)
	require.NoError(t, err)

	for _, m := range []any{&model.User{}, &model.Review{}, &model.Like{}, &model.Comment{}, &model.Notification{}, &model.Follow{}} {
		require.True(t, db.Migrator().HasTable(m))
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}
	_, err := InitDB(cfg)
	require.Error(t, err)
}
