package di

import (
	"context"
	"fmt"
	"time"

	"CryptoHunter/internal/alert"
	"CryptoHunter/internal/analysis/indicators"
	"CryptoHunter/internal/analysis/trend"
	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
	"CryptoHunter/internal/handler/api"
	internalrepo "CryptoHunter/internal/repository"
	"CryptoHunter/internal/service/binance"
	"CryptoHunter/internal/service/market"
	"CryptoHunter/internal/service/notify"
	"CryptoHunter/internal/usecase"
	"CryptoHunter/pkg/cache"
	pkgch "CryptoHunter/pkg/clickhouse"
	"CryptoHunter/pkg/config"
	xhttp "CryptoHunter/pkg/http"
	pkgkafka "CryptoHunter/pkg/kafka"
	applogger "CryptoHunter/pkg/logger"
	"CryptoHunter/pkg/metrics"
	"CryptoHunter/pkg/server"
)

// ProvideLogger creates the application logger. Production gets JSON,
// everything else console.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	level := "debug"
	if cfg.Environment == "production" {
		format = "json"
		level = "info"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideCache creates the cache backend: Redis when enabled, in-process
// otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSnapshotSource builds the configured market data source. The
// aggregate source averages Binance and CoinGecko quotes and falls back to
// fixture data when both are down.
func ProvideSnapshotSource(cfg *config.Config, log *applogger.Logger) repository.SnapshotSource {
	timeout := cfg.Market.RequestTimeout
	switch cfg.Market.Source {
	case "binance":
		return market.NewBinanceSource(cfg.Market.BinanceURL, timeout, log)
	case "coingecko":
		return market.NewCoinGeckoSource(cfg.Market.CoinGeckoURL, timeout, log)
	case "fixture":
		return market.NewFixtureSource()
	default:
		sources := []repository.SnapshotSource{
			market.NewBinanceSource(cfg.Market.BinanceURL, timeout, log),
			market.NewCoinGeckoSource(cfg.Market.CoinGeckoURL, timeout, log),
		}
		return market.NewAggregator(sources, market.NewFixtureSource(), cfg.Market.CacheTTL, log)
	}
}

// ProvideThresholdStore creates the JSON-file threshold store.
func ProvideThresholdStore(cfg *config.Config) repository.ThresholdStore {
	return internalrepo.NewThresholdFileStore(cfg.Storage.DataDir)
}

// ProvideEvaluator builds the alert evaluator, seeding default thresholds
// from config and custom ones from the persisted store.
func ProvideEvaluator(cfg *config.Config, store repository.ThresholdStore, log *applogger.Logger) (*alert.Evaluator, error) {
	defaults := make(map[string]models.Threshold, len(cfg.Monitor.Thresholds))
	for sym, seed := range cfg.Monitor.Thresholds {
		defaults[sym] = models.Threshold{
			Symbol:    sym,
			Target:    seed.Target,
			Direction: models.Direction(seed.Direction),
			Enabled:   true,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	custom, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	return alert.New(alert.Config{
		VolatilityWarning:  cfg.Monitor.VolatilityWarning,
		VolatilityCritical: cfg.Monitor.VolatilityCritical,
		MinGainers24h:      cfg.Monitor.MinGainers24h,
		StrongGainer24h:    cfg.Monitor.StrongGainer24h,
		VolumeRatio:        cfg.Monitor.VolumeRatio,
		Cooldown:           cfg.Monitor.Cooldown,
		HistoryLimit:       cfg.Monitor.HistoryLimit,
		DefaultThresholds:  defaults,
		ExcludedSymbols:    cfg.Monitor.ExcludedSymbols,
	}, alert.WithLogger(log), alert.WithThresholds(custom)), nil
}

// ProvideDedupGate creates the notification dedup gate over the cache.
func ProvideDedupGate(store cache.Service, cfg *config.Config) *alert.DedupGate {
	return alert.NewDedupGate(store, cfg.Monitor.Cooldown)
}

// ProvideNotifiers assembles the enabled chat channels into a fanout.
func ProvideNotifiers(cfg *config.Config, m repository.Metrics, log *applogger.Logger) *notify.Fanout {
	var channels []repository.Notifier
	timeout := cfg.Notify.Timeout

	if cfg.Notify.Telegram.Enabled {
		channels = append(channels, notify.NewTelegram("", cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, timeout))
	}
	if cfg.Notify.Feishu.Enabled {
		channels = append(channels, notify.NewFeishu(cfg.Notify.Feishu.WebhookURL, timeout))
	}
	if cfg.Notify.DingTalk.Enabled {
		channels = append(channels, notify.NewDingTalk(cfg.Notify.DingTalk.WebhookURL, cfg.Notify.DingTalk.Secret, timeout))
	}

	return notify.NewFanout(channels, m, log)
}

// ProvideClickHouseClient creates a ClickHouse client when enabled, nil
// otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".price_history (ts DateTime, symbol String, price Float64) ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideHistoryStore backs price history with ClickHouse when available,
// in-process memory otherwise.
func ProvideHistoryStore(chClient *pkgch.Client, cfg *config.Config) repository.HistoryStore {
	if chClient != nil {
		return internalrepo.NewClickHouseHistory(chClient.DB(), cfg.ClickHouse.Database+".price_history")
	}
	return internalrepo.NewMemoryHistory(0)
}

// ProvideAlertPublisher creates a Kafka alert publisher when enabled, nil
// otherwise.
func ProvideAlertPublisher(cfg *config.Config) (repository.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMonitor builds the polling monitor use case.
func ProvideMonitor(
	cfg *config.Config,
	source repository.SnapshotSource,
	evaluator *alert.Evaluator,
	dedup *alert.DedupGate,
	notifier *notify.Fanout,
	history repository.HistoryStore,
	publisher repository.AlertPublisher,
	thresholds repository.ThresholdStore,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Monitor {
	return usecase.NewMonitor(
		usecase.MonitorConfig{Interval: cfg.Monitor.Interval, Symbols: cfg.Market.Symbols},
		source, evaluator, dedup, notifier, history, publisher, thresholds, m, log,
	)
}

// ProvideStreamCollector wires the Binance WebSocket stream into the monitor
// when enabled, nil otherwise.
func ProvideStreamCollector(cfg *config.Config, monitor *usecase.Monitor, m repository.Metrics, log *applogger.Logger) *usecase.StreamCollector {
	if !cfg.Stream.Enabled {
		return nil
	}
	stream := binance.NewStream(
		cfg.Stream.WebSocketURL,
		cfg.Market.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		log,
	)
	return usecase.NewStreamCollector(stream, monitor, m, log)
}

// ProvidePredictionService builds the trend and indicator analysis facade.
func ProvidePredictionService(cfg *config.Config, history repository.HistoryStore, store cache.Service, log *applogger.Logger) *usecase.PredictionService {
	trendCfg := trend.Config{
		HorizonHours:   cfg.Prediction.HorizonHours,
		MinDataPoints:  cfg.Prediction.MinDataPoints,
		TrendThreshold: cfg.Prediction.TrendThreshold,
	}
	analyzer := indicators.New(indicators.Config{
		RSIPeriod:        cfg.Indicators.RSIPeriod,
		RSIOverbought:    cfg.Indicators.RSIOverbought,
		RSIOversold:      cfg.Indicators.RSIOversold,
		MACDFastPeriod:   cfg.Indicators.MACDFast,
		MACDSlowPeriod:   cfg.Indicators.MACDSlow,
		MACDSignalPeriod: cfg.Indicators.MACDSignal,
		BollingerPeriod:  cfg.Indicators.BollingerPeriod,
		BollingerStdDev:  cfg.Indicators.BollingerMult,
	})
	return usecase.NewPredictionService(history, trendCfg, analyzer, store, cfg.Market.CacheTTL, log)
}

// ProvidePortfolioManager loads the persisted portfolio ledger.
func ProvidePortfolioManager(cfg *config.Config) (*usecase.PortfolioManager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return usecase.NewPortfolioManager(ctx, internalrepo.NewPortfolioFileStore(cfg.Storage.DataDir))
}

// ProvidePaperTrader loads the persisted paper-trading account.
func ProvidePaperTrader(cfg *config.Config) (*usecase.PaperTrader, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return usecase.NewPaperTrader(ctx, internalrepo.NewPaperFileStore(cfg.Storage.DataDir), cfg.Paper.InitialBalance)
}

// ProvideHandler creates the Echo route handler.
func ProvideHandler(
	cfg *config.Config,
	log *applogger.Logger,
	source repository.SnapshotSource,
	monitor *usecase.Monitor,
	evaluator *alert.Evaluator,
	prediction *usecase.PredictionService,
	portfolio *usecase.PortfolioManager,
	paper *usecase.PaperTrader,
) xhttp.Handler {
	return api.NewMonitorHandler(log, source, monitor, evaluator, prediction, portfolio, paper, cfg.Market.Symbols)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.Monitor,
	collector *usecase.StreamCollector,
	handler xhttp.Handler,
	store cache.Service,
	chClient *pkgch.Client,
	publisher repository.AlertPublisher,
) *server.App {
	app := server.New(cfg, log, monitor, collector, handler, store, chClient)
	if publisher != nil {
		app.AddCloser(publisher.Close)
	}
	return app
}
