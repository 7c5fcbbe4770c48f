package config

// EnvPrefix namespaces every environment variable consumed by envconfig.
const EnvPrefix = "khetisathi"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "KHETISATHI_APP_ENV"
	EnvPort      = "KHETISATHI_APP_PORT"
	EnvDBDSN     = "KHETISATHI_DB_DSN"
	EnvDBHost    = "KHETISATHI_DB_HOST"
	EnvDBUser    = "KHETISATHI_DB_USER"
	EnvDBName    = "KHETISATHI_DB_NAME"
	EnvRedisURL  = "KHETISATHI_REDIS_URL"
	EnvJWTSecret = "KHETISATHI_JWT_SECRET"
	EnvJWTIssuer = "KHETISATHI_JWT_ISSUER"

	EnvGCPProjectID         = "KHETISATHI_GCP_PROJECT_ID"
	EnvPubSubOrderEventsSub = "KHETISATHI_PUBSUB_ORDER_EVENTS_SUBSCRIPTION"
	EnvPubSubNotifSub       = "KHETISATHI_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
