package di

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/handler/api"
	internalrepo "TradeSim/internal/repository"
	"TradeSim/internal/scheduler"
	icache "TradeSim/internal/service/cache"
	"TradeSim/internal/service/feed"
	"TradeSim/internal/usecase"
	pkgch "TradeSim/pkg/clickhouse"
	"TradeSim/pkg/config"
	xhttp "TradeSim/pkg/http"
	pkgkafka "TradeSim/pkg/kafka"
	applogger "TradeSim/pkg/logger"
	"TradeSim/pkg/metrics"
	"TradeSim/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideAssets converts configured assets into domain specs.
func ProvideAssets(cfg *config.Config) []models.AssetSpec {
	out := make([]models.AssetSpec, 0, len(cfg.Feed.Assets))
	for _, a := range cfg.Feed.Assets {
		out = append(out, models.AssetSpec{
			Symbol:       a.Symbol,
			Class:        models.AssetClass(a.Class),
			InitialPrice: a.InitialPrice,
		})
	}
	return out
}

// ProvideMarketStore selects the storage backend and initializes its schema.
func ProvideMarketStore(cfg *config.Config, l *applogger.Logger) (domrepo.MarketStore, error) {
	if cfg.Storage.Backend == "memory" {
		return internalrepo.NewMemoryMarketStore(), nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.SchemaFor(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	store := internalrepo.NewCHMarketStore(client, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store, nil
}

// ProvidePriceSource builds the configured feed source. The kafka source has
// no pull side; ticks arrive through the consumer, so the mock walk backs any
// direct Next call.
func ProvidePriceSource(cfg *config.Config, assets []models.AssetSpec, l *applogger.Logger) domrepo.PriceSource {
	if cfg.Feed.Source == "websocket" {
		symbols := make([]string, 0, len(assets))
		for _, a := range assets {
			symbols = append(symbols, a.Symbol)
		}
		return feed.NewWSSource(
			cfg.Feed.WebSocket.URL,
			cfg.Feed.WebSocket.APIKey,
			symbols,
			cfg.Feed.WebSocket.ReconnectDelay,
			cfg.Feed.WebSocket.PingInterval,
			l,
		)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return feed.NewMockSource(assets, cfg.Feed.MaxStepPct, rng)
}

// ProvideTradePublisher creates the Kafka trade publisher, or nil when Kafka
// is disabled.
func ProvideTradePublisher(cfg *config.Config) (domrepo.TradePublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.Producer.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaTradePublisher(producer, cfg.Kafka.TradesTopic), nil
}

// ProvideKafkaConsumer creates the ticks consumer when the feed source is
// kafka; otherwise nil.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Feed.Source != "kafka" || cfg.Kafka.TicksTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideTicksHandler handles inbound price ticks from Kafka.
func ProvideTicksHandler(cfg *config.Config, store domrepo.MarketStore, m domrepo.Metrics, l *applogger.Logger) *usecase.TicksHandler {
	return usecase.NewTicksHandler(cfg.Kafka.TicksTopic, store, m, l)
}

// ProvideCache selects the summary cache backend.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideSummaryService creates the dashboard summary usecase.
func ProvideSummaryService(cfg *config.Config, store domrepo.MarketStore, c icache.BytesCache, l *applogger.Logger, assets []models.AssetSpec) *usecase.SummaryService {
	return usecase.NewSummaryService(store, c, cfg.Cache.TTL, l, assets)
}

// ProvideFeeder creates the price feeder usecase.
func ProvideFeeder(source domrepo.PriceSource, store domrepo.MarketStore, m domrepo.Metrics, l *applogger.Logger, assets []models.AssetSpec) *usecase.Feeder {
	return usecase.NewFeeder(source, store, m, l, assets)
}

// ProvideSignalEngine creates the SMA crossover engine.
func ProvideSignalEngine(cfg *config.Config, store domrepo.MarketStore, m domrepo.Metrics, l *applogger.Logger, assets []models.AssetSpec) *usecase.SignalEngine {
	return usecase.NewSignalEngine(store, m, l, usecase.SignalConfig{
		ShortWindow: cfg.Signal.ShortWindow,
		LongWindow:  cfg.Signal.LongWindow,
		MaxDiff:     cfg.Signal.MaxDiff,
	}, assets)
}

// ProvideDecisionEngines creates one decision engine per configured class, in
// stable name order.
func ProvideDecisionEngines(
	cfg *config.Config,
	store domrepo.MarketStore,
	pub domrepo.TradePublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
	assets []models.AssetSpec,
) []*usecase.DecisionEngine {
	names := make([]string, 0, len(cfg.Decision.Classes))
	for name := range cfg.Decision.Classes {
		names = append(names, name)
	}
	sort.Strings(names)

	engines := make([]*usecase.DecisionEngine, 0, len(names))
	for _, name := range names {
		cl := cfg.Decision.Classes[name]
		engines = append(engines, usecase.NewDecisionEngine(store, pub, m, l, usecase.DecisionConfig{
			Class:         models.AssetClass(name),
			BuyThreshold:  cl.BuyThreshold,
			SellThreshold: cl.SellThreshold,
			Quantity:      cl.Quantity,
		}, assets))
	}
	return engines
}

// ProvideScheduler registers the periodic jobs: feed, signal, one decision
// job per class. A kafka-sourced feed has no pull job; ticks arrive through
// the consumer instead.
func ProvideScheduler(
	cfg *config.Config,
	m domrepo.Metrics,
	l *applogger.Logger,
	feeder *usecase.Feeder,
	signalEngine *usecase.SignalEngine,
	decisionEngines []*usecase.DecisionEngine,
) *scheduler.Scheduler {
	s := scheduler.New(m, l)

	if cfg.Feed.Source != "kafka" {
		s.Register(scheduler.Job{
			Name:     "feed",
			Interval: cfg.Feed.Interval,
			Run:      feeder.Run,
		})
	}
	s.Register(scheduler.Job{
		Name:     "signal",
		Interval: cfg.Signal.Interval,
		Run:      signalEngine.Run,
	})
	for _, eng := range decisionEngines {
		eng := eng
		s.Register(scheduler.Job{
			Name:     "decision_" + string(eng.Class()),
			Interval: cfg.Decision.Interval,
			Run:      eng.Run,
		})
	}
	return s
}

// ProvideHTTPHandler creates the dashboard and API handler.
func ProvideHTTPHandler(l *applogger.Logger, summary *usecase.SummaryService, store domrepo.MarketStore) xhttp.Handler {
	return api.NewDashboardEchoHandler(l, summary, store)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store domrepo.MarketStore,
	source domrepo.PriceSource,
	pub domrepo.TradePublisher,
	consumer *pkgkafka.Consumer,
	ticksHandler *usecase.TicksHandler,
	sched *scheduler.Scheduler,
	httpHandler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, store, source, pub, consumer, ticksHandler, sched, httpHandler)
}
