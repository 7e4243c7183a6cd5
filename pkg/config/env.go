package config

// EnvPrefix scopes every environment variable the app reads.
const EnvPrefix = "CLICLE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical environment variable names, kept in one place so tests and
// tooling never drift from the envconfig tags.
const (
	EnvAppEnv                 = "CLICLE_APP_ENV"
	EnvPort                   = "CLICLE_APP_PORT"
	EnvDBDSN                  = "CLICLE_DB_DSN"
	EnvRedisURL               = "CLICLE_REDIS_URL"
	EnvJWTSecret              = "CLICLE_JWT_SECRET"
	EnvJWTIssuer              = "CLICLE_JWT_ISSUER"
	EnvJWTExpMins             = "CLICLE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CLICLE_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "CLICLE_USE_SQLITE"
	EnvAlarmStreamLifetime    = "CLICLE_ALARM_STREAM_LIFETIME"
)
