package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cache         CacheConfig
	Mail          MailConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Mail.validate(cfg.PubSub); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GROUPCOLLECT_APP_ENV" required:"true"`
	Port         string `envconfig:"GROUPCOLLECT_APP_PORT" required:"true"`
	PublicURL    string `envconfig:"GROUPCOLLECT_APP_PUBLIC_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"GROUPCOLLECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROUPCOLLECT_LOG_WARN_STACK" default:"false"`
	AdminURL     string `envconfig:"GROUPCOLLECT_ADMIN_URL" default:"http://localhost:3000/admin"`

	CORSOrigins []string `envconfig:"GROUPCOLLECT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AdminCollectURL builds the moderation link embedded in admin notices.
func (a AppConfig) AdminCollectURL(collectID string) string {
	base := strings.TrimRight(strings.TrimSpace(a.AdminURL), "/")
	return fmt.Sprintf("%s/collects/%s", base, collectID)
}

type DBConfig struct {
	DSN    string `envconfig:"GROUPCOLLECT_DB_DSN"`
	Driver string `envconfig:"GROUPCOLLECT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GROUPCOLLECT_DB_HOST"`
	LegacyPort     int    `envconfig:"GROUPCOLLECT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GROUPCOLLECT_DB_USER"`
	LegacyPassword string `envconfig:"GROUPCOLLECT_DB_PASSWORD"`
	LegacyName     string `envconfig:"GROUPCOLLECT_DB_NAME"`
	LegacySSLMode  string `envconfig:"GROUPCOLLECT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROUPCOLLECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROUPCOLLECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROUPCOLLECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROUPCOLLECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"GROUPCOLLECT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GROUPCOLLECT_REDIS_ADDR"`
	Password     string        `envconfig:"GROUPCOLLECT_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROUPCOLLECT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROUPCOLLECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROUPCOLLECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROUPCOLLECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROUPCOLLECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROUPCOLLECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GROUPCOLLECT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GROUPCOLLECT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GROUPCOLLECT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GROUPCOLLECT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GROUPCOLLECT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GROUPCOLLECT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GROUPCOLLECT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GROUPCOLLECT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GROUPCOLLECT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GROUPCOLLECT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentityLimit int           `envconfig:"GROUPCOLLECT_AUTH_RATE_LIMIT_LOGIN_IDENTITY_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GROUPCOLLECT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GROUPCOLLECT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GROUPCOLLECT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GROUPCOLLECT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROUPCOLLECT_AUTO_MIGRATE" default:"false"`
	PageCache   bool `envconfig:"GROUPCOLLECT_PAGE_CACHE" default:"true"`
}

type CacheConfig struct {
	PageTTL        time.Duration `envconfig:"GROUPCOLLECT_CACHE_PAGE_TTL" default:"2m"`
	PublicPageSize int           `envconfig:"GROUPCOLLECT_PUBLIC_PAGE_SIZE" default:"9"`
	IdempotencyTTL time.Duration `envconfig:"GROUPCOLLECT_IDEMPOTENCY_TTL" default:"24h"`
}

type MailConfig struct {
	Transport    string `envconfig:"GROUPCOLLECT_MAIL_TRANSPORT" default:"console"`
	From         string `envconfig:"GROUPCOLLECT_MAIL_FROM" default:"noreply@groupcollect.local"`
	SMTPHost     string `envconfig:"GROUPCOLLECT_SMTP_HOST"`
	SMTPPort     int    `envconfig:"GROUPCOLLECT_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"GROUPCOLLECT_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"GROUPCOLLECT_SMTP_PASSWORD"`
}

func (m MailConfig) validate(ps PubSubConfig) error {
	switch strings.ToLower(strings.TrimSpace(m.Transport)) {
	case MailTransportConsole:
		return nil
	case MailTransportSMTP:
		if strings.TrimSpace(m.SMTPHost) == "" {
			return fmt.Errorf("%s is required for smtp transport", EnvSMTPHost)
		}
		return nil
	case MailTransportPubSub:
		if strings.TrimSpace(ps.MailTopic) == "" {
			return fmt.Errorf("%s is required for pubsub transport", EnvPubSubMailTopic)
		}
		return nil
	default:
		return fmt.Errorf("unsupported mail transport %q", m.Transport)
	}
}

type GCPConfig struct {
	ProjectID string `envconfig:"GROUPCOLLECT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	MailTopic string `envconfig:"GROUPCOLLECT_PUBSUB_MAIL_TOPIC"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
