package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgstrings "curaframe/pkg/platform/strings"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server   Server
	Engine   EngineConfig
	Log      LogConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// EngineConfig selects the constraint bundle the server evaluates against.
type EngineConfig struct {
	Name             string
	Bundle           string
	CatalogPath      string
	HistoryLimit     int
	BatchConcurrency int
}

type LogConfig struct {
	Level  string
	Format string
}

// PostgresConfig enables the postgres history store when DSN is set.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig enables the redis history store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

// FromEnv builds a Config from CURAFRAME_* environment variables so main
// stays lean. A .env file in the working directory is loaded first if
// present; real environment variables win over it.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	e := &env{}
	cfg := Config{
		Server: Server{
			Addr:            e.str("CURAFRAME_ADDR", ":8080"),
			ReadTimeout:     e.duration("CURAFRAME_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    e.duration("CURAFRAME_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.duration("CURAFRAME_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Engine: EngineConfig{
			Name:             e.str("CURAFRAME_ENGINE_NAME", "CuraFrame"),
			Bundle:           e.str("CURAFRAME_BUNDLE", "core_safety"),
			CatalogPath:      e.str("CURAFRAME_CATALOG_PATH", ""),
			HistoryLimit:     e.int("CURAFRAME_HISTORY_LIMIT", 10000),
			BatchConcurrency: e.int("CURAFRAME_BATCH_CONCURRENCY", 8),
		},
		Log: LogConfig{
			Level:  e.str("CURAFRAME_LOG_LEVEL", "info"),
			Format: e.str("CURAFRAME_LOG_FORMAT", "text"),
		},
		Postgres: PostgresConfig{
			DSN:          e.str("CURAFRAME_POSTGRES_DSN", ""),
			MaxOpenConns: e.int("CURAFRAME_POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns: e.int("CURAFRAME_POSTGRES_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          e.str("CURAFRAME_REDIS_URL", ""),
			PoolSize:     e.int("CURAFRAME_REDIS_POOL_SIZE", 10),
			MinIdleConns: e.int("CURAFRAME_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("CURAFRAME_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("CURAFRAME_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("CURAFRAME_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           e.list("CURAFRAME_KAFKA_BROKERS"),
			Topic:             e.str("CURAFRAME_KAFKA_TOPIC", "curaframe.audit"),
			Partitions:        int32(e.int("CURAFRAME_KAFKA_PARTITIONS", 1)),
			ReplicationFactor: int16(e.int("CURAFRAME_KAFKA_REPLICATION_FACTOR", 1)),
		},
	}
	if e.err != nil {
		return Config{}, e.err
	}
	if cfg.Engine.HistoryLimit < 0 {
		return Config{}, fmt.Errorf("CURAFRAME_HISTORY_LIMIT must not be negative")
	}
	if cfg.Engine.BatchConcurrency < 1 {
		return Config{}, fmt.Errorf("CURAFRAME_BATCH_CONCURRENCY must be at least 1")
	}
	return cfg, nil
}

// env records the first parse failure so FromEnv reports one error.
type env struct {
	err error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return v
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return v
}

func (e *env) list(key string) []string {
	return pkgstrings.SplitList(os.Getenv(key))
}

func (e *env) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}
