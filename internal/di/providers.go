package di

import (
	"context"
	"fmt"
	"time"

	"PulseLab/internal/domain/models"
	"PulseLab/internal/domain/repository"
	internalrepo "PulseLab/internal/repository"
	"PulseLab/internal/service/gateway"
	"PulseLab/internal/service/live"
	"PulseLab/internal/services/hrv"
	"PulseLab/internal/usecase"
	pkgcache "PulseLab/pkg/cache"
	pkgch "PulseLab/pkg/clickhouse"
	"PulseLab/pkg/config"
	pkgkafka "PulseLab/pkg/kafka"
	applogger "PulseLab/pkg/logger"
	"PulseLab/pkg/metrics"
	pkgqueue "PulseLab/pkg/queue"
	"PulseLab/pkg/server"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS pulselab",
		"CREATE TABLE IF NOT EXISTS " + samplesTable(cfg) + " (participant String, signal String, ts DateTime64(3), value Float64) ENGINE=MergeTree ORDER BY (participant, signal, ts)",
		"CREATE TABLE IF NOT EXISTS " + markersTable(cfg) + " (participant String, ts DateTime64(3), label String) ENGINE=MergeTree ORDER BY (participant, ts)",
		"CREATE TABLE IF NOT EXISTS " + logsTable(cfg) + " (ts DateTime64(3), level String, message String, caller String, count UInt32, fields String) ENGINE=MergeTree ORDER BY ts",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func samplesTable(cfg *config.Config) string {
	t := cfg.ClickHouse.SamplesTable
	if t == "" {
		t = "samples"
	}
	return cfg.ClickHouse.Database + "." + t
}

func markersTable(cfg *config.Config) string {
	t := cfg.ClickHouse.MarkersTable
	if t == "" {
		t = "markers"
	}
	return cfg.ClickHouse.Database + "." + t
}

func logsTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + ".logs"
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRecorder creates the ClickHouse session recorder.
func ProvideRecorder(chClient *pkgch.Client, cfg *config.Config) repository.Recorder {
	return internalrepo.NewClickHouseRecorder(chClient.DB(), samplesTable(cfg), markersTable(cfg))
}

// ProvideOutlet creates the Kafka sample outlet.
func ProvideOutlet(producer *pkgkafka.Producer, cfg *config.Config) repository.Outlet {
	return internalrepo.NewKafkaOutlet(producer, cfg.Kafka.TopicPrefix)
}

// ProvideSessionStore creates the ClickHouse session read model.
func ProvideSessionStore(chClient *pkgch.Client, cfg *config.Config, logger *applogger.Logger) repository.SessionStore {
	store := internalrepo.NewCHSessionStore(chClient, samplesTable(cfg), markersTable(cfg))
	store.SetLogger(logger)
	return store
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, logger *applogger.Logger) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerLogger(logger),
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideLiveStatus creates the live status snapshot store.
func ProvideLiveStatus(cfg *config.Config) *live.Status {
	return live.New(cfg.Pipeline.LiveTTL)
}

// ProvideRRLiveHandler registers the rolling HRV consumer on the RR topic.
func ProvideRRLiveHandler(cfg *config.Config, status *live.Status, m repository.Metrics) *usecase.RRLiveHandler {
	topic := cfg.Kafka.TopicPrefix + "." + string(models.SignalRRInterval)
	return usecase.NewRRLiveHandler(topic, status, m)
}

// ProvideGatewayStream creates the BLE gateway WebSocket stream.
func ProvideGatewayStream(cfg *config.Config) repository.SensorStream {
	var control *gateway.ControlClient
	if cfg.Gateway.ControlURL != "" {
		timeout := cfg.Gateway.ControlTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		control = gateway.NewControlClient(cfg.Gateway.ControlURL, timeout)
	}
	return gateway.New(
		cfg.Gateway.URL,
		cfg.Gateway.Characteristics,
		cfg.Gateway.ReconnectDelay,
		cfg.Gateway.PingInterval,
		control,
	)
}

// ProvideSampleProcessor creates the sample processor use case.
func ProvideSampleProcessor(
	outlet repository.Outlet,
	recorder repository.Recorder,
	m repository.Metrics,
) *usecase.SampleProcessor {
	return usecase.NewSampleProcessor(outlet, recorder, m)
}

// ProvideSessionManager creates the session manager use case.
func ProvideSessionManager(
	proc *usecase.SampleProcessor,
	recorder repository.Recorder,
	m repository.Metrics,
	logger *applogger.Logger,
	status *live.Status,
	cfg *config.Config,
) *usecase.SessionManager {
	return usecase.NewSessionManager(proc, recorder, m, logger, status, cfg.Pipeline.BufferSize)
}

// ProvideFrameCollector creates the frame collector use case.
func ProvideFrameCollector(
	stream repository.SensorStream,
	manager *usecase.SessionManager,
	m repository.Metrics,
) *usecase.FrameCollector {
	return usecase.NewFrameCollector(stream, manager, m)
}

// ProvideReportService creates the HRV report use case. With Redis the
// cache is layered (memory in front); without it reports cache in-process
// only.
func ProvideReportService(store repository.SessionStore, cfg *config.Config) (*usecase.ReportService, error) {
	var cache pkgcache.Service
	if cfg.Reports.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Reports.Redis.Host),
			pkgcache.WithRedisPort(cfg.Reports.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Reports.Redis.Password),
			pkgcache.WithRedisDB(cfg.Reports.Redis.DB),
			pkgcache.WithRedisPrefix("pulselab"),
		)
		if err != nil {
			return nil, fmt.Errorf("report cache: %w", err)
		}
		cache = pkgcache.NewLayeredCache(rc)
	} else {
		cache = pkgcache.NewMemoryCache()
	}

	ttl := cfg.Reports.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return usecase.NewReportService(store, hrv.New(), cache, ttl), nil
}

// ProvideReportQueue creates the Redis job queue that precomputes HRV
// reports after a session seals and archives aggregated log batches.
// Without Redis there is no queue and the first report request after
// sealing computes synchronously.
func ProvideReportQueue(cfg *config.Config, logger *applogger.Logger, reports *usecase.ReportService, chClient *pkgch.Client) *pkgqueue.RedisQueue {
	if !cfg.Reports.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Reports.Redis.Host, cfg.Reports.Redis.Port),
		Password: cfg.Reports.Redis.Password,
		DB:       cfg.Reports.Redis.DB,
	})
	q := pkgqueue.NewRedisQueue(logger, &pkgqueue.QueueConfig{
		Workers:    1,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, client, pkgqueue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewReportJob(reports, logger))
	q.RegisterJob(usecase.NewLogArchiveJob(chClient.DB(), logsTable(cfg)))
	return q
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.FrameCollector,
	manager *usecase.SessionManager,
	reports *usecase.ReportService,
	status *live.Status,
	consumer *pkgkafka.Consumer,
	kh *usecase.RRLiveHandler,
	jobs *pkgqueue.RedisQueue,
	chClient *pkgch.Client,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(consumerHooks(logger))
	}
	return server.New(cfg, logger, collector, manager, reports, status, consumer, kh, jobs, chClient)
}

// consumerHooks stamps handling start time and trace id into the
// context and logs per-attempt handler errors with the trace id.
func consumerHooks(logger *applogger.Logger) pkgkafka.ConsumerHook {
	tracing := pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return ctx, km, data, nil
		},
	}
	errorLog := pkgkafka.HookFuncs{
		Err: func(ctx context.Context, topic string, _ kafka.Message, _ []byte, err error) {
			trace, _ := ctx.Value(pkgkafka.CtxTraceID).(string)
			logger.Warn("message handling error",
				applogger.String("topic", topic),
				applogger.String("trace_id", trace),
				applogger.Error(err),
			)
		},
	}
	return pkgkafka.NewHookChain(tracing, errorLog)
}
