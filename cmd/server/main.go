package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/d60-Lab/match-social/config"
	"github.com/d60-Lab/match-social/internal/api"
	"github.com/d60-Lab/match-social/internal/app"
	"github.com/d60-Lab/match-social/pkg/database"
	"github.com/d60-Lab/match-social/pkg/logger"
	"github.com/d60-Lab/match-social/pkg/tracing"
)

var (
	cfgFile string
	v       = viper.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "match-social",
		Short: "Follow graph, reviews, notifications and feed for match ratings",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(v)
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().Int("port", v.GetInt("server.port"), "HTTP listen port")
	cmd.PersistentFlags().String("db-driver", v.GetString("database.driver"), "Database driver (postgres, sqlite)")
	cmd.PersistentFlags().String("db-path", v.GetString("database.file_path"), "SQLite database path")
	cmd.PersistentFlags().Bool("redis", v.GetBool("redis.enabled"), "Enable redis caches")
	cmd.PersistentFlags().Int("workers", v.GetInt("notification.workers"), "Notification dispatch workers")
	cmd.PersistentFlags().String("log-level", v.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "server.port", "port")
	bindFlag(cmd, "database.driver", "db-driver")
	bindFlag(cmd, "database.file_path", "db-path")
	bindFlag(cmd, "redis.enabled", "redis")
	bindFlag(cmd, "notification.workers", "workers")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func runServer(ctx context.Context) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = app.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	a := app.New(cfg, db, rdb)
	stopDispatcher := a.Start(cfg.Notification.Workers)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(api.Options{Config: cfg, Handler: a.Handler()}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", httpServer.Addr), zap.String("db", cfg.Database.Driver), zap.Bool("redis", rdb != nil))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	// HTTP 停止后再排空通知队列
	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Warn("dispatcher drain incomplete", zap.Int("pending", a.Dispatcher.QueueLen()), zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped", zap.Any("dispatch", a.Dispatcher.Stats()))
	return runErr
}
