package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valyala/fasthttp"
	bboltlib "go.etcd.io/bbolt"
	"go.uber.org/zap"

	apiHandler "github.com/dayplan/backend/api/handler"
	"github.com/dayplan/backend/internal/config"
	boltInfra "github.com/dayplan/backend/internal/infrastructure/bolt"
	"github.com/dayplan/backend/internal/infrastructure/monitor"
	pgInfra "github.com/dayplan/backend/internal/infrastructure/postgres"
	redisInfra "github.com/dayplan/backend/internal/infrastructure/redis"
	"github.com/dayplan/backend/internal/middleware"
	"github.com/dayplan/backend/internal/notify"
	"github.com/dayplan/backend/internal/router"
	"github.com/dayplan/backend/internal/services/lifecycle"
	"github.com/dayplan/backend/pkg/httpcontext"
	"github.com/dayplan/backend/pkg/logger"
	"github.com/dayplan/backend/repository"
	boltRepo "github.com/dayplan/backend/repository/bolt"
	"github.com/dayplan/backend/repository/postgres"
	redisRepo "github.com/dayplan/backend/repository/redis"
	authUC "github.com/dayplan/backend/usecase/auth"
	profileUC "github.com/dayplan/backend/usecase/profile"
	taskUC "github.com/dayplan/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		pool     *pgxpool.Pool
		boltDB   *bboltlib.DB
		taskRepo repository.TaskRepository
		userRepo repository.UserRepository
	)
	switch cfg.Storage.Driver {
	case config.DriverBolt:
		boltDB, err = boltInfra.Open(cfg.Bolt, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to open task store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			boltInfra.Close(boltDB, zapLogger)
			return nil
		})

		taskRepo, err = boltRepo.NewTaskRepository(boltDB)
		if err != nil {
			zapLogger.Fatal("task store init failed", zap.Error(err))
		}
		userRepo, err = boltRepo.NewUserRepository(boltDB)
		if err != nil {
			zapLogger.Fatal("user store init failed", zap.Error(err))
		}
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		taskRepo = postgres.NewTaskRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
	default:
		zapLogger.Fatal("unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pool, boltDB, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	broker := notify.NewRedisBroker(redisClient, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, broker, zapLogger)

	taskUseCase.StartClock()
	manager.Register("task_clock", func(ctx context.Context) error {
		taskUseCase.StopClock(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.Session.TTL),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
