package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "stockparc"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Alerts       AlertsConfig
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
	Env          string `envconfig:"STOCKPARC_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKPARC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOCKPARC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKPARC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOCKPARC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"STOCKPARC_DB_DSN"`

	Host     string `envconfig:"STOCKPARC_DB_HOST"`
	Port     int    `envconfig:"STOCKPARC_DB_PORT" default:"5432"`
	User     string `envconfig:"STOCKPARC_DB_USER"`
	Password string `envconfig:"STOCKPARC_DB_PASSWORD"`
	Name     string `envconfig:"STOCKPARC_DB_NAME"`
	SSLMode  string `envconfig:"STOCKPARC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKPARC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKPARC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKPARC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKPARC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from discrete fields when none is given.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for key, value := range map[string]string{
		"STOCKPARC_DB_HOST": db.Host,
		"STOCKPARC_DB_USER": db.User,
		"STOCKPARC_DB_NAME": db.Name,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("database config incomplete: set STOCKPARC_DB_DSN or %s", strings.Join(missing, ", "))
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.User, db.Password),
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	q := dsn.Query()
	q.Set("sslmode", db.SSLMode)
	dsn.RawQuery = q.Encode()

	db.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKPARC_REDIS_URL"`
	Address      string        `envconfig:"STOCKPARC_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKPARC_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKPARC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKPARC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKPARC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKPARC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKPARC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKPARC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKPARC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKPARC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOCKPARC_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKPARC_AUTO_MIGRATE" default:"false"`
}

type AlertsConfig struct {
	Interval   time.Duration `envconfig:"STOCKPARC_ALERTS_INTERVAL" default:"24h"`
	WindowDays int           `envconfig:"STOCKPARC_ALERTS_WINDOW_DAYS" default:"7"`
}
