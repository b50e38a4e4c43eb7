package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MARANEEA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MARANEEA_DB_DSN"
	EnvDBHost = "MARANEEA_DB_HOST"
	EnvDBUser = "MARANEEA_DB_USER"
	EnvDBName = "MARANEEA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"MARANEEA_APP_ENV" required:"true"`
	Port         string `envconfig:"MARANEEA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARANEEA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARANEEA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARANEEA_DB_DSN"`
	Driver string `envconfig:"MARANEEA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARANEEA_DB_HOST"`
	LegacyPort     int    `envconfig:"MARANEEA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARANEEA_DB_USER"`
	LegacyPassword string `envconfig:"MARANEEA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARANEEA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARANEEA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARANEEA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARANEEA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARANEEA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARANEEA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARANEEA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARANEEA_REDIS_ADDR"`
	Password     string        `envconfig:"MARANEEA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARANEEA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARANEEA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARANEEA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARANEEA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARANEEA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARANEEA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MARANEEA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MARANEEA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MARANEEA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MARANEEA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MARANEEA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MARANEEA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MARANEEA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MARANEEA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MARANEEA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MARANEEA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MARANEEA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MARANEEA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MARANEEA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MARANEEA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MARANEEA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CheckoutConfig struct {
	// Flat shipping fee applied to every order, in rupiah.
	ShippingCost int64 `envconfig:"MARANEEA_CHECKOUT_SHIPPING_COST" default:"15000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARANEEA_AUTO_MIGRATE" default:"false"`
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
