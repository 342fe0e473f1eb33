package config

const EnvPrefix = "GROUPCOLLECT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	MailTransportConsole = "console"
	MailTransportSMTP    = "smtp"
	MailTransportPubSub  = "pubsub"
)

const (
	EnvAppEnv    = "GROUPCOLLECT_APP_ENV"
	EnvPort      = "GROUPCOLLECT_APP_PORT"
	EnvPublicURL = "GROUPCOLLECT_APP_PUBLIC_URL"

	EnvDBDSN    = "GROUPCOLLECT_DB_DSN"
	EnvDBDriver = "GROUPCOLLECT_DB_DRIVER"
	EnvDBHost   = "GROUPCOLLECT_DB_HOST"
	EnvDBUser   = "GROUPCOLLECT_DB_USER"
	EnvDBName   = "GROUPCOLLECT_DB_NAME"

	EnvRedisURL = "GROUPCOLLECT_REDIS_URL"

	EnvJWTSecret              = "GROUPCOLLECT_JWT_SECRET"
	EnvJWTIssuer              = "GROUPCOLLECT_JWT_ISSUER"
	EnvJWTExpMins             = "GROUPCOLLECT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GROUPCOLLECT_REFRESH_TOKEN_TTL_MINUTES"

	EnvMailTransport = "GROUPCOLLECT_MAIL_TRANSPORT"
	EnvMailFrom      = "GROUPCOLLECT_MAIL_FROM"
	EnvSMTPHost      = "GROUPCOLLECT_SMTP_HOST"

	EnvGCPProjectID    = "GROUPCOLLECT_GCP_PROJECT_ID"
	EnvPubSubMailTopic = "GROUPCOLLECT_PUBSUB_MAIL_TOPIC"

	EnvCachePageTTL = "GROUPCOLLECT_CACHE_PAGE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
