package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"purchase-approval/internal/infrastructure/db"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DBDriver      string
	DBAutoMigrate bool
	DBLogLevel    string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	// Empty disables the idempotency middleware.
	RedisAddr        string
	RedisDB          int
	RedisTimeoutSecs int
	IdempTTLSecs     int

	ApproverEmail string
	// YAML tier file; empty selects the single-approver policy.
	PolicyFile string

	TracingStdout bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:      strings.ToLower(getenv("DB_DRIVER", db.DriverMySQL)),
		DBAutoMigrate: getbool("DB_AUTO_MIGRATE", false),
		DBLogLevel:    getenv("DB_LOG_LEVEL", "warn"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "purchasing"),
		MySQLUser: getenv("MYSQL_USER", "purchasing"),
		MySQLPass: getenv("MYSQL_PASS", "purchasing"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "purchase-approval.db"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisDB:          getint("REDIS_DB", 0),
		RedisTimeoutSecs: getint("REDIS_TIMEOUT_SECONDS", 5),
		IdempTTLSecs:     getint("IDEMPOTENCY_TTL_SECONDS", 300),

		ApproverEmail: getenv("APPROVER_EMAIL", "manager@example.com"),
		PolicyFile:    os.Getenv("POLICY_FILE"),

		TracingStdout: getbool("TRACING_STDOUT", false),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := net.LookupPort("tcp", c.AppPort); err != nil {
		return fmt.Errorf("invalid APP_PORT %q: %w", c.AppPort, err)
	}

	switch c.DBDriver {
	case db.DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case db.DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case db.DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", c.DBDriver)
	}

	if c.RedisAddr != "" && c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be > 0, got %d", c.IdempTTLSecs)
	}
	if c.RedisAddr != "" && c.RedisTimeoutSecs <= 0 {
		return fmt.Errorf("REDIS_TIMEOUT_SECONDS must be > 0, got %d", c.RedisTimeoutSecs)
	}
	if strings.TrimSpace(c.ApproverEmail) == "" {
		return errors.New("missing APPROVER_EMAIL")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) RedisTimeout() time.Duration {
	return time.Duration(c.RedisTimeoutSecs) * time.Second
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case db.DriverPostgres:
		return c.PostgresDSN
	case db.DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
