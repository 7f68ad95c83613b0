package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"PosBoard/internal/config"
	"PosBoard/internal/notify"
	"PosBoard/internal/order"
	"PosBoard/internal/server"
	"PosBoard/internal/service"
	"PosBoard/internal/stats"
	"PosBoard/internal/storage"
	"PosBoard/pkg/kit"
)

func openStorage(ctx context.Context, cfg *config.Config) (storage.Documents, error) {
	return storage.Open(ctx, storage.Options{
		Backend: cfg.Storage.Backend,
		DataDir: cfg.Storage.DataDir,
		Files: map[string]string{
			order.RecordName: cfg.Storage.OrdersFile,
			stats.RecordName: cfg.Storage.StatsFile,
		},
		PebbleDir:   cfg.Storage.PebbleDir,
		DatabaseURL: cfg.Storage.DatabaseURL,
	})
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := kit.NewLogger(serviceName, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	docs, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			log.Warn("close storage", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := notify.NewHub(log, notify.NewMetrics(reg))
	defer hub.Close()

	closeRelays, err := subscribeRelays(hub, cfg, log)
	if err != nil {
		return err
	}
	defer closeRelays()

	svc := service.NewOrderService(order.NewStore(docs), stats.NewAggregator(docs), hub, log)
	if err := svc.Init(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	h := server.NewHandler(&server.Server{
		Orders:       svc,
		Hub:          hub,
		Storage:      docs,
		Log:          log,
		SSEHeartbeat: cfg.Server.SSEHeartbeat,
	}, server.HTTPDeps{
		Log:             log,
		Service:         serviceName,
		Registry:        reg,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsToken:    cfg.Metrics.Token,
		StaticDir:       cfg.Server.StaticDir,
		CreateRateLimit: cfg.Server.CreateRateLimit,
	})

	ln, err := kit.ListenFirstFree(cfg.Server.Host, cfg.Server.Port, cfg.Server.PortMax, log)
	if err != nil {
		return err
	}
	log.Info("posboard ready",
		zap.String("addr", ln.Addr().String()),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("redis_relay", cfg.Notify.RedisAddr != ""),
		zap.Bool("kafka_relay", len(cfg.Notify.KafkaBrokers) > 0),
	)

	return kit.RunHTTPServer(ctx, ln, h, log, hub.Close)
}

// subscribeRelays attaches the optional Redis and Kafka relays. Relay errors
// are logged and never unsubscribe the relay.
func subscribeRelays(hub *notify.Hub, cfg *config.Config, log *zap.Logger) (func(), error) {
	var closers []func() error

	if cfg.Notify.RedisAddr != "" {
		client := notify.NewRedisClient(cfg.Notify.RedisAddr)
		relay := notify.NewRedisRelay(client, cfg.Notify.RedisChannel)
		hub.Subscribe(notify.Tolerant(relay, "redis", log))
		closers = append(closers, client.Close)
		log.Info("redis relay enabled", zap.String("addr", cfg.Notify.RedisAddr), zap.String("channel", cfg.Notify.RedisChannel))
	}

	if len(cfg.Notify.KafkaBrokers) > 0 {
		relay, err := notify.NewKafkaRelay(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return nil, fmt.Errorf("kafka relay: %w", err)
		}
		hub.Subscribe(notify.Tolerant(relay, "kafka", log))
		closers = append(closers, relay.Close)
		log.Info("kafka relay enabled", zap.Strings("brokers", cfg.Notify.KafkaBrokers), zap.String("topic", cfg.Notify.KafkaTopic))
	}

	return func() {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		if err := errors.Join(errs...); err != nil {
			log.Warn("close relays", zap.Error(err))
		}
	}, nil
}

func runRebuildStats(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := kit.NewLogger(serviceName, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	docs, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = docs.Close() }()

	hub := notify.NewHub(log, nil)
	defer hub.Close()

	svc := service.NewOrderService(order.NewStore(docs), stats.NewAggregator(docs), hub, log)
	if err := svc.Init(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	st, err := svc.RebuildStats(ctx)
	if err != nil {
		return fmt.Errorf("rebuild stats: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
