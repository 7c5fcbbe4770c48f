package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Fulfillment  FulfillmentConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KHETISATHI_APP_ENV" required:"true"`
	Port         string `envconfig:"KHETISATHI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KHETISATHI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KHETISATHI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KHETISATHI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KHETISATHI_DB_DSN"`
	Driver string `envconfig:"KHETISATHI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KHETISATHI_DB_HOST"`
	LegacyPort     int    `envconfig:"KHETISATHI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KHETISATHI_DB_USER"`
	LegacyPassword string `envconfig:"KHETISATHI_DB_PASSWORD"`
	LegacyName     string `envconfig:"KHETISATHI_DB_NAME"`
	LegacySSLMode  string `envconfig:"KHETISATHI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KHETISATHI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KHETISATHI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KHETISATHI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KHETISATHI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KHETISATHI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KHETISATHI_REDIS_ADDR"`
	Password     string        `envconfig:"KHETISATHI_REDIS_PASSWORD"`
	DB           int           `envconfig:"KHETISATHI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KHETISATHI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KHETISATHI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KHETISATHI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KHETISATHI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KHETISATHI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KHETISATHI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KHETISATHI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KHETISATHI_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KHETISATHI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KHETISATHI_AUTO_MIGRATE" default:"false"`
}

// FulfillmentConfig tunes the assignment engine's time windows.
type FulfillmentConfig struct {
	ResponseWindow        time.Duration `envconfig:"KHETISATHI_FULFILLMENT_RESPONSE_WINDOW" default:"10m"`
	WatcherResponseWindow time.Duration `envconfig:"KHETISATHI_FULFILLMENT_WATCHER_RESPONSE_WINDOW" default:"2m"`
	DeadlineSweepInterval time.Duration `envconfig:"KHETISATHI_FULFILLMENT_DEADLINE_SWEEP_INTERVAL" default:"1m"`
	DeadlineSweepBatch    int           `envconfig:"KHETISATHI_FULFILLMENT_DEADLINE_SWEEP_BATCH" default:"100"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KHETISATHI_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"KHETISATHI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KHETISATHI_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic         string `envconfig:"KHETISATHI_PUBSUB_ORDER_EVENTS_TOPIC" default:"ks-order-events"`
	OrderEventsSubscription  string `envconfig:"KHETISATHI_PUBSUB_ORDER_EVENTS_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"KHETISATHI_PUBSUB_NOTIFICATION_TOPIC" default:"ks-notification-events"`
	NotificationSubscription string `envconfig:"KHETISATHI_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription    string `envconfig:"KHETISATHI_PUBSUB_ANALYTICS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset                string `envconfig:"KHETISATHI_BIGQUERY_DATASET" default:"khetisathi"`
	FulfillmentEventsTable string `envconfig:"KHETISATHI_BIGQUERY_FULFILLMENT_TABLE" default:"fulfillment_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"KHETISATHI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"KHETISATHI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"KHETISATHI_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"KHETISATHI_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
