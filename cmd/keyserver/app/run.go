package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/cache"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http/middleware"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/kafka"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/queue"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/logging"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/registry"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/security"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig wires the key service. Brokers, Redis, and sealing are all
// optional; the registry and the HTTP surface are not.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	l := logging.New("app")

	// sealing material, shared by the sealed seed source and sealed responses
	var sealer security.Sealer
	if cfg.Crypto.AES256B64 != "" {
		cm, err := security.LoadCryptoMaterial(cfg.Crypto)
		if err != nil {
			return nil, nil, fmt.Errorf("crypto material: %w", err)
		}
		sealer, err = security.NewSealer(&cm)
		if err != nil {
			return nil, nil, fmt.Errorf("sealer: %w", err)
		}
	}

	// build the registry once; it is immutable for the process lifetime
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	src, err := seedSource(cfg, sealer)
	if err != nil {
		return nil, nil, err
	}
	seeds, err := src.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load seeds: %w", err)
	}
	reg, err := registry.New(seeds)
	if err != nil {
		return nil, nil, fmt.Errorf("build registry: %w", err)
	}
	middleware.SetRegistrySize(reg.Len())
	l.Info("registry loaded", "source", sourceName(cfg), "services", reg.Len())

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// audit sinks: the log is always on, brokers join when configured
	sinks := audit.Fanout{audit.NewSlogSink(logging.New("audit"))}

	if cfg.Rabbit.URL != "" {
		conn, err := amqp091.Dial(cfg.Rabbit.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			cleanup()
			return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
		}
		pub, err := queue.NewAuditPublisher(ch)
		if err != nil {
			conn.Close()
			cleanup()
			return nil, nil, fmt.Errorf("audit publisher: %w", err)
		}
		sinks = append(sinks, pub)
		closers = append(closers, func() { _ = conn.Close() })
	}

	if len(cfg.Kafka.Brokers) > 0 {
		prod, err := kafka.NewAuditProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("audit producer: %w", err)
		}
		sinks = append(sinks, prod)
		closers = append(closers, func() { _ = prod.Close() })
	}

	access := usecase.NewKeyAccess(reg, sinks)
	clients := security.NewClientRegistry(cfg.Security.Clients)
	l.Info("client registry loaded", "clients", clients.Len())

	kh := http.NewKeyHandler(access)
	th := http.NewTokenHandler(cfg, clients)
	authz := middleware.NewAuthz(cfg)

	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		lim, err := newLimiter(cfg, &closers)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		limit = middleware.RateLimit(lim)
	}

	var seal gin.HandlerFunc
	if cfg.Security.SealResponses {
		if sealer == nil {
			cleanup()
			return nil, nil, fmt.Errorf("security.seal_responses requires crypto material")
		}
		seal = middleware.NewResponseSealer(sealer).Seal()
	}

	router := http.NewRouter(kh, th, authz, logging.New("http"), limit, seal)

	return &App{Router: router}, cleanup, nil
}

func seedSource(cfg configs.Config, sealer security.Sealer) (registry.Source, error) {
	switch cfg.Registry.Source {
	case "", "static":
		return registry.StaticSource{}, nil
	case "inline":
		return inlineSource{seeds: cfg.Registry.Seeds}, nil
	case "file":
		return registry.FileSource{Path: cfg.Registry.File}, nil
	case "sealed":
		if sealer == nil {
			return nil, fmt.Errorf("registry.source sealed requires crypto material")
		}
		return registry.SealedFileSource{Path: cfg.Registry.File, Sealer: sealer}, nil
	case "vault":
		v := cfg.Registry.Vault
		return registry.VaultSource{Addr: v.Addr, Token: v.Token, Mount: v.Mount, Path: v.Path}, nil
	default:
		return nil, fmt.Errorf("registry.source %q unknown", cfg.Registry.Source)
	}
}

func sourceName(cfg configs.Config) string {
	if cfg.Registry.Source == "" {
		return "static"
	}
	return cfg.Registry.Source
}

func newLimiter(cfg configs.Config, closers *[]func()) (middleware.Limiter, error) {
	rpm := cfg.RateLimit.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		*closers = append(*closers, func() { _ = rdb.Close() })
		return cache.NewRedisRateLimiter(rdb, rpm, time.Minute), nil
	}

	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = rpm
	}
	return cache.NewTokenBucket(rpm, burst), nil
}
