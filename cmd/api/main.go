// Command api serves the task manager HTTP API.
//
//	@title						Task Manager API
//	@version					1.0
//	@description				Accounts, sessions and tasks with role and ownership based access.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskmanager/task-api/internal/api"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
	mongostore "github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskmanager/task-api/internal/infrastructure/db/redis"
	"github.com/taskmanager/task-api/internal/infrastructure/queue"
	"github.com/taskmanager/task-api/internal/infrastructure/security"
	"github.com/taskmanager/task-api/internal/pkg/config"
	"github.com/taskmanager/task-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// stores is the persistence wiring chosen by STORE_DRIVER.
type stores struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	throttle ports.LoginThrottle
	denylist ports.RefreshDenylist
	checks   []handler.DependencyCheck
	close    func(ctx context.Context)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "task-api",
		Env:     cfg.Env,
	})

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	st, err := openStores(startupCtx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open stores")
	}

	pool := queue.NewPool(cfg.Auth.HashWorkers, log)
	hasher := security.NewPasswordHasher(pool, cfg.Auth.BcryptCost)
	tokens := security.NewTokenManager(security.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL.Std(),
		RefreshTTL:    cfg.Auth.RefreshTTL.Std(),
		Leeway:        cfg.Auth.ClockSkew.Std(),
		Issuer:        cfg.Auth.Issuer,
	})

	authOpts := []service.AuthOption{service.WithLoginThrottle(st.throttle)}
	if st.denylist != nil {
		authOpts = append(authOpts, service.WithRefreshDenylist(st.denylist))
	}

	e := api.NewRouter(api.Deps{
		Auth:   service.NewAuthService(st.users, st.tasks, hasher, tokens, log, authOpts...),
		Users:  service.NewUserService(st.users, hasher, log),
		Tasks:  service.NewTaskService(st.tasks, log),
		Tokens: tokens,
		Health: st.checks,
		Logger: log,
		Cookie: handler.CookieConfig{
			Path:   "/users",
			Secure: cfg.IsProduction(),
			MaxAge: tokens.RefreshTTL(),
		},
		AuthRateLimit: cfg.Login.RateLimit,
		AuthRateBurst: cfg.Login.RateBurst,
		CORSOrigins:   cfg.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	pool.Stop()
	st.close(ctx)
	log.Info().Msg("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory stores; data is lost on restart")
		st := &stores{
			users:    memory.NewUserRepository(),
			tasks:    memory.NewTaskRepository(),
			throttle: memory.NewLoginThrottle(cfg.Login.MaxAttempts, cfg.Login.LockoutWindow.Std()),
			close:    func(context.Context) {},
		}
		if cfg.Auth.RefreshRevocation {
			st.denylist = memory.NewRefreshDenylist()
		}
		return st, nil
	}

	timeout := cfg.Mongo.Timeout.Std()
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, err
	}
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  timeout,
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	users := mongostore.NewUserRepository(db, timeout)
	tasks := mongostore.NewTaskRepository(db, timeout)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := tasks.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	st := &stores{
		users:    users,
		tasks:    tasks,
		throttle: redisstore.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.LockoutWindow.Std()),
		checks:   []handler.DependencyCheck{mongoCheck(client), redisCheck(rdb)},
		close: func(ctx context.Context) {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("redis close error")
			}
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect error")
			}
		},
	}
	if cfg.Auth.RefreshRevocation {
		st.denylist = redisstore.NewRefreshDenylist(rdb)
	}
	return st, nil
}

func mongoCheck(client *mongo.Client) handler.DependencyCheck {
	return handler.DependencyCheck{Name: "mongodb", Ping: func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}}
}

func redisCheck(rdb *redis.Client) handler.DependencyCheck {
	return handler.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}
