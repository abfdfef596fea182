package di

import (
	"context"
	"fmt"
	"time"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	domservice "github.com/katheedev/crypto-sentiment/internal/domain/service"
	"github.com/katheedev/crypto-sentiment/internal/handler/api"
	internalrepo "github.com/katheedev/crypto-sentiment/internal/repository"
	"github.com/katheedev/crypto-sentiment/internal/service/auth"
	"github.com/katheedev/crypto-sentiment/internal/services/market"
	"github.com/katheedev/crypto-sentiment/internal/services/sentiment"
	"github.com/katheedev/crypto-sentiment/internal/services/social"
	"github.com/katheedev/crypto-sentiment/internal/usecase"
	"github.com/katheedev/crypto-sentiment/pkg/cache"
	pkgch "github.com/katheedev/crypto-sentiment/pkg/clickhouse"
	"github.com/katheedev/crypto-sentiment/pkg/config"
	xhttp "github.com/katheedev/crypto-sentiment/pkg/http"
	pkgkafka "github.com/katheedev/crypto-sentiment/pkg/kafka"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
	"github.com/katheedev/crypto-sentiment/pkg/metrics"
	"github.com/katheedev/crypto-sentiment/pkg/queue"
	"github.com/katheedev/crypto-sentiment/pkg/server"
)

// ProvideLogger creates the structured logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideCache creates the cache backend: Redis when enabled, otherwise a
// bounded in-process cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
// Returns nil when persistence is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	db := cfg.ClickHouse.Database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.runs (
			symbol String, interval String, summary String, created_at DateTime
		) ENGINE = MergeTree ORDER BY (symbol, interval, created_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.backtests (
			params String, metrics String, created_at DateTime
		) ENGINE = MergeTree ORDER BY created_at`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.config_overrides (
			key String, value String, updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY key`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRunStore creates the run store backed by ClickHouse, or nil when
// persistence is disabled.
func ProvideRunStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.RunStore {
	if chClient == nil {
		return nil
	}
	store := internalrepo.NewClickHouseRunStore(chClient.DB(), cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideConfigStore creates the runtime-override store, or nil when
// persistence is disabled.
func ProvideConfigStore(chClient *pkgch.Client, cfg *config.Config) domrepo.ConfigStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseConfigStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideModelStore creates the filesystem model store.
func ProvideModelStore(cfg *config.Config) (domrepo.ModelStore, error) {
	store, err := internalrepo.NewFSModelStore(cfg.Analysis.Model.Dir)
	if err != nil {
		return nil, fmt.Errorf("model store: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRunPublisher creates the Kafka-backed run publisher, or nil when no
// producer is wired.
func ProvideRunPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.RunPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideQueue creates the Redis-backed job queue. Requires the Redis cache
// backend; returns nil when either is disabled.
func ProvideQueue(cfg *config.Config, l *applogger.Logger, c cache.Service) *queue.RedisQueue {
	if !cfg.Queue.Enabled {
		return nil
	}
	redisCache, ok := c.(*cache.RedisCache)
	if !ok {
		l.Warn("job queue disabled: redis cache backend required")
		return nil
	}
	return queue.NewRedisQueue(l,
		&queue.QueueConfig{Workers: cfg.Queue.Workers, RetryLimit: 3, RetryDelay: 10 * time.Second},
		redisCache.Client(),
		queue.ModeProducerConsumer,
		queue.WithKeyPrefix(cfg.Queue.Name),
	)
}

// ProvideRuntimeConfig creates the runtime settings layer from file defaults
// and the persisted override store.
func ProvideRuntimeConfig(cfg *config.Config, store domrepo.ConfigStore) *usecase.RuntimeConfig {
	return usecase.NewRuntimeConfig(usecase.SettingsFromConfig(cfg), store)
}

// ProvideMarket creates the Binance REST market source.
func ProvideMarket(cfg *config.Config) domservice.MarketDataSource {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Market.Timeout))
	return market.NewBinance(cfg.Market.BaseURL, client)
}

// ProvideSocial creates the fan-out social source over Twitter and Reddit.
func ProvideSocial(cfg *config.Config) domservice.SocialSource {
	client := xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	return social.NewMulti(
		social.NewTwitter(cfg.Social.Twitter.BearerToken, cfg.Social.Twitter.BaseURL, cfg.Social.Twitter.MaxResults, client),
		social.NewReddit(cfg.Social.Reddit.ClientID, cfg.Social.Reddit.ClientSecret, cfg.Social.Reddit.UserAgent, cfg.Social.Reddit.BaseURL, cfg.Social.Reddit.Limit, client),
	)
}

// ProvideScorer creates the VADER post scorer.
func ProvideScorer() domservice.PostScorer {
	return sentiment.NewVaderScorer()
}

// ProvideAnalyzer assembles the analysis use case with its optional
// collaborators.
func ProvideAnalyzer(
	cfg *config.Config,
	marketSrc domservice.MarketDataSource,
	socialSrc domservice.SocialSource,
	scorer domservice.PostScorer,
	runtime *usecase.RuntimeConfig,
	m domrepo.Metrics,
	l *applogger.Logger,
	c cache.Service,
	runs domrepo.RunStore,
	pub domrepo.RunPublisher,
) *usecase.Analyzer {
	opts := []usecase.AnalyzerOption{
		usecase.WithCache(c, cfg.Cache.TTL),
		usecase.WithExtraKeywords(cfg.Social.ExtraKeywords),
	}
	if runs != nil {
		opts = append(opts, usecase.WithRunStore(runs))
	}
	if pub != nil {
		opts = append(opts, usecase.WithRunPublisher(pub))
	}
	return usecase.NewAnalyzer(marketSrc, socialSrc, scorer, runtime, m, l, opts...)
}

// ProvideBacktester creates the backtest use case.
func ProvideBacktester(analyzer *usecase.Analyzer, runs domrepo.RunStore, l *applogger.Logger) *usecase.Backtester {
	return usecase.NewBacktester(analyzer, runs, l)
}

// ProvidePredictor creates the model use case. The queue is optional; a nil
// queue makes training synchronous.
func ProvidePredictor(analyzer *usecase.Analyzer, store domrepo.ModelStore, jobs *queue.RedisQueue, l *applogger.Logger) *usecase.Predictor {
	var svc queue.QueueService
	if jobs != nil {
		svc = jobs
	}
	return usecase.NewPredictor(analyzer, store, svc, l)
}

// ProvideCollector creates the live stream collector, or nil when no stream
// symbols are configured.
func ProvideCollector(cfg *config.Config, analyzer *usecase.Analyzer, m domrepo.Metrics, l *applogger.Logger) *usecase.Collector {
	if len(cfg.Market.StreamSymbols) == 0 {
		return nil
	}
	stream := market.NewStream(
		cfg.Market.WebSocketURL,
		cfg.Market.StreamSymbols,
		cfg.Market.StreamInterval,
		cfg.Market.ReconnectDelay,
		cfg.Market.PingInterval,
	)
	iv := domrepo.NormalizeInterval(cfg.Market.StreamInterval)
	return usecase.NewCollector(stream, analyzer, iv, m, l)
}

// ProvideAuth creates the token service.
func ProvideAuth(cfg *config.Config) *auth.Service {
	return auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

// ProvideHandler assembles all HTTP handlers.
func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	analyzer *usecase.Analyzer,
	backtester *usecase.Backtester,
	predictor *usecase.Predictor,
	runtime *usecase.RuntimeConfig,
	authSvc *auth.Service,
	runs domrepo.RunStore,
) xhttp.Handler {
	var rlCapacity, rlRefill float64
	if cfg.RateLimit.Enabled {
		rlCapacity = float64(cfg.RateLimit.Burst)
		rlRefill = cfg.RateLimit.RPS
	}
	return api.NewComposite(
		api.NewAnalysisHandler(l, analyzer, backtester, predictor, authSvc, rlCapacity, rlRefill),
		api.NewAuthHandler(l, authSvc, cfg.Auth.AdminUser, cfg.Auth.AdminPass),
		api.NewConfigHandler(l, runtime, authSvc),
		api.NewHealthHandler(runs),
	)
}

// ProvideApp creates the application server and registers queued jobs.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.Collector,
	jobs *queue.RedisQueue,
	predictor *usecase.Predictor,
	chClient *pkgch.Client,
	publisher domrepo.RunPublisher,
) *server.App {
	if jobs != nil {
		jobs.RegisterJob(usecase.NewTrainJob(predictor))
	}
	return server.New(cfg, l, handler, collector, jobs, chClient, publisher)
}
