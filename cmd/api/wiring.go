package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dejobratic/rmaflow/internal/awsclient"
	"github.com/dejobratic/rmaflow/internal/config"
	"github.com/dejobratic/rmaflow/internal/database"
	idemdynamodb "github.com/dejobratic/rmaflow/internal/idempotency/dynamodb"
	idemmemory "github.com/dejobratic/rmaflow/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/rmaflow/internal/idempotency/postgres"
	idemredis "github.com/dejobratic/rmaflow/internal/idempotency/redis"
	"github.com/dejobratic/rmaflow/internal/kafka"
	"github.com/dejobratic/rmaflow/internal/returns/adapters/email"
	httpadapter "github.com/dejobratic/rmaflow/internal/returns/adapters/http"
	"github.com/dejobratic/rmaflow/internal/returns/adapters/logbook"
	"github.com/dejobratic/rmaflow/internal/returns/adapters/postgres"
	"github.com/dejobratic/rmaflow/internal/returns/adapters/sms"
	sqsbus "github.com/dejobratic/rmaflow/internal/returns/adapters/sqs"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// purgeInterval is how often expired Postgres idempotency rows are deleted.
const purgeInterval = 10 * time.Minute

// backends owns the connections shared by the adapters chosen in config.
type backends struct {
	cfg       *config.Config
	logger    *slog.Logger
	dbMetrics *database.Metrics

	pool    *pgxpool.Pool
	aws     *awsclient.Clients
	checks  []httpadapter.ReadinessCheck
	closers []func() error
}

// postgresTables lists the tables the configured Postgres backends depend on.
func (b *backends) postgresTables() []string {
	var tables []string
	if b.cfg.Idempotency.Backend == config.BackendPostgres {
		tables = append(tables, database.TableIdempotencyKeys)
	}
	if b.cfg.Submissions.Backend == config.SubmissionsPostgres {
		tables = append(tables, database.TableRmaSubmissions)
	}
	return tables
}

// connect opens Postgres and loads AWS configuration when a configured backend needs them.
func (b *backends) connect(ctx context.Context) error {
	if b.cfg.UsesPostgres() {
		pool, err := database.NewPool(ctx, b.cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("create database pool: %w", err)
		}
		b.pool = pool
		b.closers = append(b.closers, func() error {
			pool.Close()
			return nil
		})
		tables := b.postgresTables()
		b.checks = append(b.checks, httpadapter.ReadinessCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return database.CheckHealth(ctx, pool, tables...) },
		})

		if b.cfg.Database.AutoMigrate {
			b.logger.Info("running database migrations", "path", b.cfg.Database.MigrationsPath)
			version, err := database.RunMigrations(b.cfg.Database.URL, b.cfg.Database.MigrationsPath)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			b.logger.Info("migrations completed", "schema_version", version)
		}
	}

	if b.cfg.UsesAWS() {
		awsCfg, err := awsclient.LoadConfig(ctx, awsclient.Options{
			Region:      b.cfg.AWS.Region,
			EndpointURL: b.cfg.AWS.EndpointURL,
		})
		if err != nil {
			return err
		}
		b.aws = awsclient.NewClients(awsCfg)
	}

	return nil
}

func (b *backends) idempotencyStore(ctx context.Context) (ports.KeyValueStore, error) {
	switch b.cfg.Idempotency.Backend {
	case config.BackendMemory:
		return idemmemory.NewStore(), nil

	case config.BackendRedis:
		client, err := idemredis.NewClient(b.cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("create redis client: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		store := idemredis.NewStore(client)
		b.checks = append(b.checks, httpadapter.ReadinessCheck{Name: "redis", Check: store.Ping})
		return store, nil

	case config.BackendPostgres:
		store := idempostgres.NewStore(b.pool, b.dbMetrics)
		go purgeExpired(ctx, store, b.logger)
		return store, nil

	case config.BackendDynamoDB:
		return idemdynamodb.NewStore(b.aws.DynamoDB, b.cfg.Idempotency.DynamoDBTable), nil

	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", b.cfg.Idempotency.Backend)
	}
}

func (b *backends) emailSender() (ports.EmailSender, error) {
	provider := b.cfg.Email.Provider
	if provider == config.ProviderAuto {
		provider = config.ProviderStub
		if b.cfg.Email.SMTPConfigured() {
			provider = config.ProviderSMTP
		}
	}

	switch provider {
	case config.ProviderSMTP:
		client, err := email.NewSMTPClient(email.SMTPConfig{
			Host:     b.cfg.Email.SMTPHost,
			Port:     b.cfg.Email.SMTPPort,
			Username: b.cfg.Email.SMTPUsername,
			Password: b.cfg.Email.SMTPPassword,
			UseTLS:   b.cfg.Email.SMTPUseTLS,
			Timeout:  b.cfg.Email.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create smtp client: %w", err)
		}
		return email.NewSMTPSender(client, b.cfg.Email.Sender(), b.logger), nil
	case config.ProviderSES:
		return email.NewSESSender(b.aws.SES, b.cfg.Email.Sender(), b.logger), nil
	default:
		b.logger.Warn("smtp not configured, emails are logged instead of sent")
		return email.NewStubSender(b.logger), nil
	}
}

func (b *backends) smsSender() ports.SMSSender {
	provider := b.cfg.SMS.Provider
	if provider == config.ProviderAuto {
		provider = config.ProviderStub
		if b.cfg.SMS.HTTPConfigured() {
			provider = config.ProviderHTTP
		}
	}

	switch provider {
	case config.ProviderHTTP:
		client := &http.Client{Timeout: b.cfg.SMS.Timeout}
		return sms.NewHTTPSender(client, b.cfg.SMS.APIURL, b.cfg.SMS.APIKey, b.logger)
	case config.ProviderSNS:
		return sms.NewSNSSender(b.aws.SNS, b.cfg.SMS.SenderID, b.logger)
	default:
		b.logger.Warn("sms gateway not configured, messages are logged instead of sent")
		return sms.NewStubSender(b.logger)
	}
}

func (b *backends) eventBus() (ports.EventBus, error) {
	switch b.cfg.Events.Backend {
	case config.EventsKafka:
		publisher := kafka.NewPublisher(kafka.NewWriter(b.cfg.Events.Brokers, b.cfg.Events.Topic))
		b.closers = append(b.closers, publisher.Close)
		return publisher, nil
	case config.EventsSQS:
		return sqsbus.NewEventBus(b.aws.SQS, b.cfg.Events.SQSQueueURL), nil
	case config.EventsNoop:
		return kafka.NewNoopEventBus(b.logger), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", b.cfg.Events.Backend)
	}
}

func (b *backends) submissionRecorder() ports.SubmissionRecorder {
	if b.cfg.Submissions.Backend == config.SubmissionsPostgres {
		return postgres.NewSubmissionRepository(b.pool, b.dbMetrics)
	}
	return logbook.NewRecorder(b.logger)
}

// close releases connections in reverse order of creation.
func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.logger.Error("failed to close backend", "error", err)
		}
	}
}

func loadDirectory(cfg *config.Config) (*domain.Directory, error) {
	if cfg.Vendors.File == "" {
		return domain.DefaultDirectory(), nil
	}
	directory, err := domain.LoadDirectoryFile(cfg.Vendors.File)
	if err != nil {
		return nil, fmt.Errorf("load vendor directory: %w", err)
	}
	return directory, nil
}

func purgeExpired(ctx context.Context, store *idempostgres.Store, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("idempotency purge failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("purged expired idempotency keys", "count", removed)
			}
		}
	}
}
