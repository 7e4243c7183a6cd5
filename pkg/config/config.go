package config

import (
	"fmt"
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
	Alarm         AlarmConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" && !cfg.FeatureFlags.UseSQLite {
		return nil, fmt.Errorf("%s is required unless %s is set", EnvDBDSN, EnvUseSQLite)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CLICLE_APP_ENV" required:"true"`
	Port         string `envconfig:"CLICLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CLICLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLICLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CLICLE_DB_DSN"`
	Driver string `envconfig:"CLICLE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"CLICLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLICLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLICLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLICLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLICLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLICLE_REDIS_ADDR"`
	Password     string        `envconfig:"CLICLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLICLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLICLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLICLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLICLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLICLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLICLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CLICLE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CLICLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CLICLE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CLICLE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLICLE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLICLE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLICLE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLICLE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLICLE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"CLICLE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"CLICLE_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"CLICLE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"CLICLE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"CLICLE_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"CLICLE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// AlarmConfig tunes the live notification stream.
type AlarmConfig struct {
	StreamLifetime time.Duration `envconfig:"CLICLE_ALARM_STREAM_LIFETIME" default:"60m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CLICLE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CLICLE_AUTO_MIGRATE" default:"false"`
}
