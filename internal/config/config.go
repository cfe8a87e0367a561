package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	OpenAI    OpenAIConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type PostgresConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	UploadPerHour int
	RoastPerHour  int
	StoryPerMin   int
}

type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	AssistantID  string
	Model        string
	PollInterval int // seconds between run status checks
	PollAttempts int // maximum status checks before giving up
}

type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("POSTGRES_DSN")
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("OPENAI_API_KEY")
	readSecret("STORAGE_ACCESS_KEY_ID")
	readSecret("STORAGE_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("postgres.dsn", "POSTGRES_DSN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = viper.BindEnv("openai.assistant_id", "OPENAI_ASSISTANT_ID")
	_ = viper.BindEnv("openai.model", "OPENAI_MODEL")
	_ = viper.BindEnv("openai.poll_interval", "OPENAI_POLL_INTERVAL")
	_ = viper.BindEnv("openai.poll_attempts", "OPENAI_POLL_ATTEMPTS")
	_ = viper.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	_ = viper.BindEnv("storage.region", "STORAGE_REGION")
	_ = viper.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	_ = viper.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("storage.bucket_name", "STORAGE_BUCKET_NAME")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("postgres.dsn", "postgres://localhost:5432/roast?sslmode=disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.upload_per_hour", 20)
	viper.SetDefault("ratelimit.roast_per_hour", 10)
	viper.SetDefault("ratelimit.story_per_min", 10)

	// OpenAI defaults
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.poll_interval", 5)
	viper.SetDefault("openai.poll_attempts", 60)

	// Storage defaults
	viper.SetDefault("storage.region", "auto")
	viper.SetDefault("storage.bucket_name", "pitchdecks")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Postgres: PostgresConfig{
			DSN: viper.GetString("postgres.dsn"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			UploadPerHour: viper.GetInt("ratelimit.upload_per_hour"),
			RoastPerHour:  viper.GetInt("ratelimit.roast_per_hour"),
			StoryPerMin:   viper.GetInt("ratelimit.story_per_min"),
		},
		OpenAI: OpenAIConfig{
			APIKey:       viper.GetString("openai.api_key"),
			BaseURL:      viper.GetString("openai.base_url"),
			AssistantID:  viper.GetString("openai.assistant_id"),
			Model:        viper.GetString("openai.model"),
			PollInterval: viper.GetInt("openai.poll_interval"),
			PollAttempts: viper.GetInt("openai.poll_attempts"),
		},
		Storage: StorageConfig{
			Endpoint:        viper.GetString("storage.endpoint"),
			Region:          viper.GetString("storage.region"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			BucketName:      viper.GetString("storage.bucket_name"),
		},
	}

	return cfg, nil
}
