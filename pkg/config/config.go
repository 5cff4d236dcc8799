package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "FARMFRESH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env              string   `envconfig:"FARMFRESH_APP_ENV" required:"true"`
	Port             string   `envconfig:"FARMFRESH_APP_PORT" default:"8080"`
	LogLevel         string   `envconfig:"FARMFRESH_LOG_LEVEL" default:"info"`
	LogWarnStack     bool     `envconfig:"FARMFRESH_LOG_WARN_STACK" default:"false"`
	ExtraCORSOrigins []string `envconfig:"FARMFRESH_EXTRA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FARMFRESH_DB_DSN"`

	Host     string `envconfig:"FARMFRESH_DB_HOST"`
	Port     int    `envconfig:"FARMFRESH_DB_PORT" default:"5432"`
	User     string `envconfig:"FARMFRESH_DB_USER"`
	Password string `envconfig:"FARMFRESH_DB_PASSWORD"`
	Name     string `envconfig:"FARMFRESH_DB_NAME"`
	SSLMode  string `envconfig:"FARMFRESH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMFRESH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMFRESH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMFRESH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMFRESH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds a postgres DSN from the discrete fields when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db config requires either FARMFRESH_DB_DSN or host/user/name")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMFRESH_REDIS_URL"`
	Address      string        `envconfig:"FARMFRESH_REDIS_ADDR"`
	Password     string        `envconfig:"FARMFRESH_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMFRESH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMFRESH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMFRESH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMFRESH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMFRESH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMFRESH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FARMFRESH_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FARMFRESH_JWT_ISSUER" default:"farmfresh"`
	ExpirationMinutes      int    `envconfig:"FARMFRESH_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"FARMFRESH_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FARMFRESH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FARMFRESH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FARMFRESH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FARMFRESH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FARMFRESH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FARMFRESH_AUTO_MIGRATE" default:"false"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"FARMFRESH_GCP_PROJECT_ID"`
	OrdersTopic string `envconfig:"FARMFRESH_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published at all.
func (p PubSubConfig) Enabled() bool {
	return p.ProjectID != "" && p.OrdersTopic != ""
}
