package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"

	ProviderAuto = "auto"
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
	ProviderHTTP = "http"
	ProviderSNS  = "sns"
	ProviderStub = "stub"

	EventsNoop  = "noop"
	EventsKafka = "kafka"
	EventsSQS   = "sqs"

	SubmissionsLog      = "log"
	SubmissionsPostgres = "postgres"
)

// Config captures runtime configuration for the API service.
type Config struct {
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Email       EmailConfig
	SMS         SMSConfig
	AWS         AWSConfig
	Events      EventsConfig
	Submissions SubmissionsConfig
	Workflow    WorkflowConfig
	Vendors     VendorsConfig
	Telemetry   TelemetryConfig
	Service     ServiceConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
	CORSOrigins   []string
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type RedisConfig struct {
	URL string
}

type IdempotencyConfig struct {
	Backend       string
	TTL           time.Duration
	DynamoDBTable string
}

type EmailConfig struct {
	Provider     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	From         string
	Timeout      time.Duration
}

// SMTPConfigured reports whether real SMTP delivery is possible.
func (c EmailConfig) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// Sender returns the From address, falling back to the SMTP username.
func (c EmailConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.SMTPUsername
}

type SMSConfig struct {
	Provider string
	APIURL   string
	APIKey   string
	Timeout  time.Duration
	SenderID string
}

// HTTPConfigured reports whether the JSON SMS gateway can be used.
func (c SMSConfig) HTTPConfigured() bool {
	return c.APIURL != "" && c.APIKey != ""
}

type AWSConfig struct {
	Region      string
	EndpointURL string
}

type EventsConfig struct {
	Backend     string
	Brokers     []string
	Topic       string
	SQSQueueURL string
}

type SubmissionsConfig struct {
	Backend string
}

type WorkflowConfig struct {
	MaxAttempts int
	RetryPause  time.Duration
	Timeout     time.Duration
}

type VendorsConfig struct {
	File string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	OTelInsecure  bool
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort        = 8787
	defaultShutdownGrace   = 15
	defaultMigrationsPath  = "migrations"
	defaultRedisURL        = "redis://localhost:6379/0"
	defaultIdemBackend     = BackendRedis
	defaultIdemTTL         = 3600 * time.Second
	defaultDynamoDBTable   = "rma-idempotency"
	defaultSMTPPort        = 587
	defaultEmailTimeout    = 30 * time.Second
	defaultSMSTimeout      = 30 * time.Second
	defaultAWSRegion       = "us-east-1"
	defaultEventsTopic     = "rma.workflow.events"
	defaultMaxAttempts     = 2
	defaultRetryPause      = time.Second
	defaultWorkflowTimeout = 120 * time.Second
	defaultServiceName     = "rmaflow-api"
	defaultServiceVersion  = "1.0.0"
	defaultEnvironment     = "development"
	defaultLogLevel        = "info"
	defaultOTelSampleRate  = 1.0
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	idemCfg, err := loadIdempotencyConfig()
	if err != nil {
		return nil, fmt.Errorf("loading idempotency config: %w", err)
	}

	emailCfg, err := loadEmailConfig()
	if err != nil {
		return nil, fmt.Errorf("loading email config: %w", err)
	}

	smsCfg, err := loadSMSConfig()
	if err != nil {
		return nil, fmt.Errorf("loading SMS config: %w", err)
	}

	workflowCfg, err := loadWorkflowConfig()
	if err != nil {
		return nil, fmt.Errorf("loading workflow config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	cfg := &Config{
		HTTP:        httpCfg,
		Database:    loadDatabaseConfig(),
		Redis:       RedisConfig{URL: getEnvOrDefault("REDIS_URL", defaultRedisURL)},
		Idempotency: idemCfg,
		Email:       emailCfg,
		SMS:         smsCfg,
		AWS: AWSConfig{
			Region:      getEnvOrDefault("AWS_REGION", defaultAWSRegion),
			EndpointURL: os.Getenv("AWS_ENDPOINT_URL"),
		},
		Events: EventsConfig{
			Backend:     strings.ToLower(getEnvOrDefault("EVENTS_BACKEND", EventsNoop)),
			Brokers:     getListEnv("KAFKA_BROKERS"),
			Topic:       getEnvOrDefault("KAFKA_TOPIC", defaultEventsTopic),
			SQSQueueURL: os.Getenv("SQS_QUEUE_URL"),
		},
		Submissions: SubmissionsConfig{
			Backend: strings.ToLower(getEnvOrDefault("SUBMISSIONS_BACKEND", SubmissionsLog)),
		},
		Workflow:  workflowCfg,
		Vendors:   VendorsConfig{File: os.Getenv("VENDORS_FILE")},
		Telemetry: telCfg,
		Service:   loadServiceConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown backends and values the workflow cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http port %d out of range", c.HTTP.Port))
	}
	if !oneOf(c.Idempotency.Backend, BackendMemory, BackendRedis, BackendPostgres, BackendDynamoDB) {
		errs = append(errs, fmt.Errorf("unknown idempotency backend %q", c.Idempotency.Backend))
	}
	if c.Idempotency.TTL <= 0 {
		errs = append(errs, errors.New("idempotency ttl must be positive"))
	}
	if c.Idempotency.Backend == BackendDynamoDB && c.Idempotency.DynamoDBTable == "" {
		errs = append(errs, errors.New("dynamodb idempotency backend requires a table name"))
	}
	if !oneOf(c.Email.Provider, ProviderAuto, ProviderSMTP, ProviderSES, ProviderStub) {
		errs = append(errs, fmt.Errorf("unknown email provider %q", c.Email.Provider))
	}
	if c.Email.Provider == ProviderSMTP && c.Email.SMTPHost == "" {
		errs = append(errs, errors.New("smtp email provider requires SMTP_HOST"))
	}
	if c.Email.Provider == ProviderSES && c.Email.Sender() == "" {
		errs = append(errs, errors.New("ses email provider requires EMAIL_FROM"))
	}
	if !oneOf(c.SMS.Provider, ProviderAuto, ProviderHTTP, ProviderSNS, ProviderStub) {
		errs = append(errs, fmt.Errorf("unknown sms provider %q", c.SMS.Provider))
	}
	if c.SMS.Provider == ProviderHTTP && !c.SMS.HTTPConfigured() {
		errs = append(errs, errors.New("http sms provider requires SMS_API_URL and SMS_API_KEY"))
	}
	if !oneOf(c.Events.Backend, EventsNoop, EventsKafka, EventsSQS) {
		errs = append(errs, fmt.Errorf("unknown events backend %q", c.Events.Backend))
	}
	if c.Events.Backend == EventsKafka && len(c.Events.Brokers) == 0 {
		errs = append(errs, errors.New("kafka events backend requires KAFKA_BROKERS"))
	}
	if c.Events.Backend == EventsSQS && c.Events.SQSQueueURL == "" {
		errs = append(errs, errors.New("sqs events backend requires SQS_QUEUE_URL"))
	}
	if !oneOf(c.Submissions.Backend, SubmissionsLog, SubmissionsPostgres) {
		errs = append(errs, fmt.Errorf("unknown submissions backend %q", c.Submissions.Backend))
	}
	if c.Workflow.MaxAttempts < 1 {
		errs = append(errs, errors.New("workflow max attempts must be at least 1"))
	}
	if c.Workflow.RetryPause < 0 {
		errs = append(errs, errors.New("workflow retry pause must not be negative"))
	}
	if c.Workflow.Timeout <= 0 {
		errs = append(errs, errors.New("workflow timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// UsesPostgres reports whether any configured backend needs the database pool.
func (c *Config) UsesPostgres() bool {
	return c.Idempotency.Backend == BackendPostgres || c.Submissions.Backend == SubmissionsPostgres
}

// UsesAWS reports whether any configured backend needs AWS credentials.
func (c *Config) UsesAWS() bool {
	return c.Idempotency.Backend == BackendDynamoDB ||
		c.Email.Provider == ProviderSES ||
		c.SMS.Provider == ProviderSNS ||
		c.Events.Backend == EventsSQS
}

func loadHTTPConfig() (HTTPConfig, error) {
	port, err := getIntEnv("PORT", defaultHTTPPort)
	if err != nil {
		return HTTPConfig{}, err
	}

	shutdownGrace, err := getIntEnv("API_SHUTDOWN_GRACE_SECONDS", defaultShutdownGrace)
	if err != nil {
		return HTTPConfig{}, err
	}

	origins := getListEnv("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
		CORSOrigins:   origins,
	}, nil
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    getBoolEnv("AUTO_MIGRATE", true),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}
}

func loadIdempotencyConfig() (IdempotencyConfig, error) {
	ttlSeconds, err := getIntEnv("IDEMPOTENCY_TTL_SECONDS", int(defaultIdemTTL/time.Second))
	if err != nil {
		return IdempotencyConfig{}, err
	}

	return IdempotencyConfig{
		Backend:       strings.ToLower(getEnvOrDefault("IDEMPOTENCY_BACKEND", defaultIdemBackend)),
		TTL:           time.Duration(ttlSeconds) * time.Second,
		DynamoDBTable: getEnvOrDefault("IDEMPOTENCY_DYNAMODB_TABLE", defaultDynamoDBTable),
	}, nil
}

func loadEmailConfig() (EmailConfig, error) {
	port, err := getIntEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return EmailConfig{}, err
	}

	timeout, err := getDurationEnv("EMAIL_TIMEOUT", defaultEmailTimeout)
	if err != nil {
		return EmailConfig{}, err
	}

	return EmailConfig{
		Provider:     strings.ToLower(getEnvOrDefault("EMAIL_PROVIDER", ProviderAuto)),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     port,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPUseTLS:   getBoolEnv("SMTP_USE_TLS", true),
		From:         os.Getenv("EMAIL_FROM"),
		Timeout:      timeout,
	}, nil
}

func loadSMSConfig() (SMSConfig, error) {
	timeout, err := getDurationEnv("SMS_TIMEOUT", defaultSMSTimeout)
	if err != nil {
		return SMSConfig{}, err
	}

	return SMSConfig{
		Provider: strings.ToLower(getEnvOrDefault("SMS_PROVIDER", ProviderAuto)),
		APIURL:   os.Getenv("SMS_API_URL"),
		APIKey:   os.Getenv("SMS_API_KEY"),
		Timeout:  timeout,
		SenderID: os.Getenv("SMS_SENDER_ID"),
	}, nil
}

func loadWorkflowConfig() (WorkflowConfig, error) {
	attempts, err := getIntEnv("WORKFLOW_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return WorkflowConfig{}, err
	}

	pause, err := getDurationEnv("WORKFLOW_RETRY_PAUSE", defaultRetryPause)
	if err != nil {
		return WorkflowConfig{}, err
	}

	timeout, err := getDurationEnv("WORKFLOW_TIMEOUT", defaultWorkflowTimeout)
	if err != nil {
		return WorkflowConfig{}, err
	}

	return WorkflowConfig{
		MaxAttempts: attempts,
		RetryPause:  pause,
		Timeout:     timeout,
	}, nil
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  endpoint,
		OTelInsecure:  getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", endpoint != ""),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", endpoint != ""),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "rmaflow")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "10")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "2")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// getDurationEnv accepts Go durations ("90s") and bare numbers as seconds.
func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
