package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docuchat/internal/config"
	"docuchat/internal/model"
	"docuchat/internal/platform/mysql"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/platform/redis"
	"docuchat/internal/repository"
	"docuchat/internal/worker"
)

// App holds the process-wide dependencies and the background worker.
type App struct {
	Config     *config.Config
	MySQL      *gorm.DB
	Redis      *redisv9.Client
	MQConn     *amqp.Connection
	TurnWorker *worker.TurnPersistWorker
	StartedAt  time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := mysql.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("init mysql failed: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Document{},
		&model.Message{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("init redis failed: %w", err)
	}

	mqConn, err := rabbitmq.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("init rabbitmq failed: %w", err)
	}

	messageRepo := repository.NewMessageRepository(db)
	turnWorker := worker.NewTurnPersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := turnWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start turn persist worker failed: %w", err)
	}

	return &App{
		Config:     cfg,
		MySQL:      db,
		Redis:      redisClient,
		MQConn:     mqConn,
		TurnWorker: turnWorker,
		StartedAt:  time.Now(),
	}, nil
}

// Close stops the worker first so in-flight deliveries finish before the
// broker connection goes away.
func (a *App) Close() {
	if a.TurnWorker != nil {
		a.TurnWorker.Close()
	}

	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			log.Printf("close rabbitmq connection failed: %v", err)
		}
	}

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("close redis client failed: %v", err)
		}
	}

	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("close mysql connection failed: %v", err)
			}
		}
	}
}
