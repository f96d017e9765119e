package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	Storage  StorageConfig  `yaml:"storage"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Events   EventsConfig   `yaml:"events"`
	Seed     SeedConfig     `yaml:"seed"`
}

type ServerConfig struct {
	Port     string `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type SweeperConfig struct {
	Interval time.Duration `yaml:"interval"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
}

type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

type CacheConfig struct {
	TicketTTL time.Duration `yaml:"ticket_ttl"`
}

type EventsConfig struct {
	DealStream string `yaml:"deal_stream"`
	DealGroup  string `yaml:"deal_group"`
}

// SeedConfig 示範資料只在開發環境開啟
type SeedConfig struct {
	Enabled bool  `yaml:"enabled"`
	OwnerID int64 `yaml:"owner_id"`
}

var AppConfig *Config

// LoadConfig 依序套用：預設值 -> CONFIG_FILE 指定的 YAML -> 環境變數
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return AppConfig, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8080",
			GinMode:  "release",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "postgres",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "ticket-events",
		},
		Sweeper: SweeperConfig{
			Interval: time.Hour,
			LockTTL:  5 * time.Minute,
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
		},
		Search: SearchConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Cache: CacheConfig{
			TicketTTL: 10 * time.Minute,
		},
		Events: EventsConfig{
			DealStream: "deal-events:stream",
			DealGroup:  "ticket-deal-workers",
		},
		Seed: SeedConfig{
			OwnerID: 1,
		},
	}
}

func LoadTestConfig() *Config {
	cfg := Default()
	cfg.Database = DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}
	cfg.Redis = RedisConfig{
		Host: "localhost",
		Port: "6380", // 測試 Redis 用 6380 port
		DB:   1,
	}
	cfg.Sweeper.Interval = time.Second
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSL_MODE", c.Database.SSLMode)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	var err error
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Kafka.Enabled, err = getEnvBool("KAFKA_ENABLED", c.Kafka.Enabled); err != nil {
		return err
	}
	c.Kafka.Brokers = getEnvList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	if c.Sweeper.Interval, err = getEnvDuration("SWEEP_INTERVAL", c.Sweeper.Interval); err != nil {
		return err
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.Sweeper.Interval)
	}

	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)

	if c.Search.MaxPageSize, err = getEnvInt("SEARCH_MAX_PAGE_SIZE", c.Search.MaxPageSize); err != nil {
		return err
	}
	if c.Cache.TicketTTL, err = getEnvDuration("TICKET_CACHE_TTL", c.Cache.TicketTTL); err != nil {
		return err
	}

	c.Events.DealStream = getEnv("DEAL_EVENTS_STREAM", c.Events.DealStream)

	if c.Seed.Enabled, err = getEnvBool("SEED_ENABLED", c.Seed.Enabled); err != nil {
		return err
	}
	seedOwner, err := getEnvInt("SEED_OWNER_ID", int(c.Seed.OwnerID))
	if err != nil {
		return err
	}
	c.Seed.OwnerID = int64(seedOwner)
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
