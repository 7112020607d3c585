package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	ApplyDefaults(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Notification.Workers)
	assert.Equal(t, 5*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, 20, cfg.Feed.DefaultPageSize)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestFromViperEnvOverride(t *testing.T) {
	t.Setenv("MATCHSOCIAL_NOTIFICATION_WORKERS", "9")
	t.Setenv("MATCHSOCIAL_DATABASE_DRIVER", "postgres")

	v := viper.New()
	ApplyDefaults(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Notification.Workers)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN(), "dbname=match_social")
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	ApplyDefaults(v)
	v.Set("database.driver", "oracle")

	_, err := FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database.driver")
}

func TestFromViperRejectsBadPageSizes(t *testing.T) {
	v := viper.New()
	ApplyDefaults(v)
	v.Set("feed.max_page_size", 5)

	_, err := FromViper(v)
	require.Error(t, err)
}
