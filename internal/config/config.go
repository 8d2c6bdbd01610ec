package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultMySQLDSN = "user:password@tcp(localhost:3306)/sakubijak?charset=utf8mb4&parseTime=True&loc=UTC"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBDriver string
	DSN      string
	ResetDB  bool

	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	RefreshTTL   time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string

	AMQPURL      string
	AMQPExchange string

	CORSOrigin  string
	LogLevel    string
	LogFormat   string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = getEnv("MYSQL_DSN", defaultMySQLDSN)
	}

	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DSN:          dsn,
		ResetDB:      getEnvBool("RESET_DB", false),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAlgorithm: strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		TokenTTL:     time.Duration(getEnvInt("JWT_TTL_SECONDS", 3600)) * time.Second,
		RefreshTTL:   time.Duration(getEnvInt("REFRESH_TTL_SECONDS", 7*24*3600)) * time.Second,
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "sakubijak.events"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "*"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		SwaggerHost:  os.Getenv("SWAGGER_HOST"),
	}
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm))
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL_SECONDS must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TTL_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
