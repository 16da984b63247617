package di

import (
	"fmt"
	"strings"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	"MacroPulse/internal/handler/api"
	internalrepo "MacroPulse/internal/repository"
	icache "MacroPulse/internal/service/cache"
	"MacroPulse/internal/service/financeflow"
	"MacroPulse/internal/service/ratelimit"
	"MacroPulse/internal/services/indicator"
	"MacroPulse/internal/usecase"
	pkgcache "MacroPulse/pkg/cache"
	pkgch "MacroPulse/pkg/clickhouse"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	pkgkafka "MacroPulse/pkg/kafka"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/metrics"
	"MacroPulse/pkg/scheduler"
	"MacroPulse/pkg/server"
	pkgsqlite "MacroPulse/pkg/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "macropulse"

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the application logger. Error entries are also
// aggregated onto the logs topic when the collector is enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.Threshold,
			Topic:          cfg.Kafka.Topics.Logs,
			Service:        serviceName,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the registry every metric of the process lives in.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideStore opens the configured backend. Schema creation is left to
// App.Migrate.
func ProvideStore(cfg *config.Config, log *applogger.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		log.Info("store ready", applogger.String("driver", "clickhouse"), applogger.String("database", client.Database()))
		return internalrepo.NewCHStore(client, cfg.Store.QueryTimeout, log), nil
	case "sqlite":
		client, err := pkgsqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite client: %w", err)
		}
		log.Info("store ready", applogger.String("driver", "sqlite"), applogger.String("path", client.Path()))
		return internalrepo.NewSQLiteStore(client, cfg.Store.QueryTimeout, log), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// ProvidePublisher fans pipeline output to Kafka, or drops it when Kafka is
// off.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return repository.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topics.Events, cfg.Kafka.Topics.JobRuns)
}

// ProvideLocker picks a Redis lock shared by replicas, or an in-process one.
func ProvideLocker(cfg *config.Config) (pkgcache.Locker, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryLocker(), nil
	}
	l, err := pkgcache.NewRedisLocker(
		pkgcache.WithRedisAddr(cfg.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis locker: %w", err)
	}
	return l, nil
}

// ProvideFinanceFlow creates the provider client used by both pipelines.
func ProvideFinanceFlow(cfg *config.Config, log *applogger.Logger) *financeflow.Client {
	return financeflow.New(cfg.FinanceFlow.BaseURL, cfg.FinanceFlow.APIKey, cfg.FinanceFlow.Timeout,
		log.With(applogger.String("component", "financeflow")))
}

// ProvideCanonicalizer loads the operator rule table, or the built-in one.
func ProvideCanonicalizer(cfg *config.Config) (*indicator.Canonicalizer, error) {
	if strings.TrimSpace(cfg.Indicator.RulesFile) == "" {
		return indicator.New(nil), nil
	}
	rules, err := indicator.LoadRules(cfg.Indicator.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("indicator rules: %w", err)
	}
	return indicator.New(rules), nil
}

func ProvideCalendarIngest(
	src *financeflow.Client,
	store repository.Store,
	canon *indicator.Canonicalizer,
	pub repository.Publisher,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.CalendarIngest {
	return usecase.NewCalendarIngest(src, store, canon, pub, m, log, usecase.CalendarConfig{
		LookbackDays:  cfg.Calendar.LookbackDays,
		LookaheadDays: cfg.Calendar.LookaheadDays,
		Workers:       cfg.Calendar.Workers,
		Source:        cfg.FinanceFlow.Source,
	})
}

func ProvideFxIngest(
	src *financeflow.Client,
	store repository.Store,
	pub repository.Publisher,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.FxIngest {
	return usecase.NewFxIngest(src, store, ratelimit.New(), pub, m, log, usecase.FxConfig{
		Pairs:      cfg.FX.Pairs,
		RatePerSec: cfg.FX.RatePerSec,
		Burst:      cfg.FX.Burst,
		Workers:    cfg.FX.Workers,
	})
}

func ProvideJobRunner(
	locker pkgcache.Locker,
	cal *usecase.CalendarIngest,
	fx *usecase.FxIngest,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.JobRunner {
	return usecase.NewJobRunner(locker, cfg.Schedule.LockTTL, log, cal, fx)
}

func ProvideOverviewService(store repository.Store, m repository.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.OverviewService {
	return usecase.NewOverviewService(store, icache.NewTTLCache(cfg.Overview.TTL), m, log, usecase.OverviewConfig{
		LookbackDays:  cfg.Overview.LookbackDays,
		LookaheadDays: cfg.Overview.LookaheadDays,
		QueryTimeout:  cfg.Store.QueryTimeout,
	})
}

func ProvideOverviewHandler(log *applogger.Logger, svc *usecase.OverviewService, store repository.Store) *api.OverviewHandler {
	return api.NewOverviewHandler(log, svc, store)
}

// ProvideHTTPServer creates the echo server exposing the read API and
// /metrics.
func ProvideHTTPServer(cfg *config.Config, log *applogger.Logger, h *api.OverviewHandler, reg *prometheus.Registry) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(log, []xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, reg),
	)
}

// ProvideScheduler registers both pipelines on their cron schedules.
func ProvideScheduler(cfg *config.Config, log *applogger.Logger, runner *usecase.JobRunner) (*scheduler.Scheduler, error) {
	s := scheduler.New(log)
	if !cfg.Schedule.Enabled {
		return s, nil
	}
	if err := s.AddJob(cfg.Schedule.Calendar, runner.Scheduled(models.JobUpdateCalendar)); err != nil {
		return nil, fmt.Errorf("schedule calendar: %w", err)
	}
	if err := s.AddJob(cfg.Schedule.FX, runner.Scheduled(models.JobUpdateFX)); err != nil {
		return nil, fmt.Errorf("schedule fx: %w", err)
	}
	return s, nil
}

// ProvideKafkaConsumer creates the trigger consumer, or nil when Kafka is off.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger, runner *usecase.JobRunner, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.Topics.Triggers == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewTriggerHandler(cfg.Kafka.Topics.Triggers, runner, log))
	consumer.WithConsumerHook(deadLetterMetrics(m))
	return consumer, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	store repository.Store,
	canon *indicator.Canonicalizer,
	runner *usecase.JobRunner,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	consumer *pkgkafka.Consumer,
	pub repository.Publisher,
	locker pkgcache.Locker,
) *server.App {
	return server.New(server.Deps{
		Config:     cfg,
		Logger:     log,
		Store:      store,
		Indicators: canon.SeedIndicators(),
		Runner:     runner,
		HTTP:       httpServer,
		Scheduler:  sched,
		Consumer:   consumer,
		Publisher:  pub,
		Locker:     locker,
	})
}
