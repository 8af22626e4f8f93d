package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Seed sources for the initial timetable.
const (
	SeedSourceEmbedded = "embedded"
	SeedSourceFile     = "file"
	SeedSourceDatabase = "database"
)

// Placement strategies for displaced entries.
const (
	PlacementRandom  = "random"
	PlacementNearest = "nearest"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Timetable TimetableConfig
	Sessions  SessionConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// TimetableConfig selects where the initial grid comes from and how displaced entries are placed.
type TimetableConfig struct {
	SeedSource string
	SeedFile   string
	SeedID     string
	Placement  string
	RandomSeed int64
}

// SessionConfig governs where board sessions live and how long they survive without activity.
type SessionConfig struct {
	Store string
	TTL   time.Duration
}

// Load reads configuration from the environment and the dotenv file at path (".env" when empty).
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Timetable = TimetableConfig{
		SeedSource: oneOf(strings.ToLower(v.GetString("TIMETABLE_SEED_SOURCE")), SeedSourceEmbedded, SeedSourceFile, SeedSourceDatabase),
		SeedFile:   v.GetString("TIMETABLE_SEED_FILE"),
		SeedID:     v.GetString("TIMETABLE_SEED_ID"),
		Placement:  oneOf(strings.ToLower(v.GetString("TIMETABLE_PLACEMENT")), PlacementRandom, PlacementNearest),
		RandomSeed: v.GetInt64("TIMETABLE_RANDOM_SEED"),
	}

	cfg.Sessions = SessionConfig{
		Store: oneOf(strings.ToLower(v.GetString("SESSION_STORE")), SessionStoreMemory, SessionStoreRedis),
		TTL:   parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_board")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("TIMETABLE_SEED_SOURCE", SeedSourceEmbedded)
	v.SetDefault("TIMETABLE_SEED_FILE", "")
	v.SetDefault("TIMETABLE_SEED_ID", "default")
	v.SetDefault("TIMETABLE_PLACEMENT", PlacementRandom)
	v.SetDefault("TIMETABLE_RANDOM_SEED", 0)

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "12h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// oneOf returns value when it is allowed, otherwise the first allowed option.
func oneOf(value string, allowed ...string) string {
	for _, option := range allowed {
		if value == option {
			return value
		}
	}
	return allowed[0]
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
