package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/kafka"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/queue"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/repo"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/logging"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
)

// keyaudit drains access events off the brokers into MySQL. It runs beside
// the keyserver so the HTTP path never waits on the archive.
func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	logging.Init("keyaudit", cfg.App.LogFile, cfg.App.LogLevel)
	l := logging.New("worker")

	if cfg.MySQL.DSN == "" {
		log.Fatal("keyaudit requires mysql.dsn")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()

	arch := usecase.NewArchiveAccessEvent(repo.NewMySQLAuditRepo(db))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := 0

	if cfg.Rabbit.URL != "" {
		conn, err := amqp091.Dial(cfg.Rabbit.URL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			log.Fatal(err)
		}
		if err := queue.DeclareAuditTopology(ch); err != nil {
			log.Fatal(err)
		}

		h := queue.NewAccessEventHandler(arch)
		router := queue.NewRouter(ch, queue.WithPrefetch(50))
		router.Register(queue.AuditQueue, queue.JSONHandler[audit.AccessEvent]{HandleFunc: h.HandleAccess})
		if err := router.Start(); err != nil {
			log.Fatal(err)
		}
		l.Info("consuming rabbitmq", "queue", queue.AuditQueue)
		started++
	}

	if len(cfg.Kafka.Brokers) > 0 {
		grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			log.Fatal(err)
		}
		defer grp.Close()

		h := kafka.NewAccessArchiveHandler(arch)
		consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.Topic}, h.Handle, logging.New("kafka"))
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				l.Error("kafka consumer stopped", "error", err)
				stop()
			}
		}()
		l.Info("consuming kafka", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
		started++
	}

	if started == 0 {
		log.Fatal("keyaudit requires rabbitmq.url or kafka.brokers")
	}

	<-ctx.Done()
	l.Info("shutting down")
}
