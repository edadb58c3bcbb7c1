package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nomenclator/internal/config"
	"nomenclator/internal/metrics"
	"nomenclator/internal/platform/database"
	rabbitmqClient "nomenclator/internal/platform/rabbitmq"
	redisClient "nomenclator/internal/platform/redis"
	"nomenclator/internal/repository"
	"nomenclator/internal/worker"
)

type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	DB             *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	SnapshotWorker *worker.SnapshotWorker

	StartedAt time.Time
}

// New opens the store and, when enabled, redis and rabbitmq. The snapshot
// worker only runs when rabbitmq is enabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		StartedAt: time.Now(),
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := database.Migrate(db); err != nil {
		_ = app.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Redis = redisCli
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.RecordEventQueue)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.MQConn = mqConn

		app.SnapshotWorker = worker.NewSnapshotWorker(
			mqConn,
			repository.NewNomenclatureRepository(db),
			cfg.RabbitMQ.RecordEventQueue,
			cfg.Export.SnapshotPath,
			logger.Named("snapshot"),
		)
		if err := app.SnapshotWorker.Start(ctx); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("start snapshot worker failed: %w", err)
		}
	}

	logger.Info("bootstrap complete",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("redis", app.Redis != nil),
		zap.Bool("rabbitmq", app.MQConn != nil),
	)
	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.SnapshotWorker != nil {
		a.SnapshotWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
