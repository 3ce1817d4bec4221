package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	ProblemCacheTTL    time.Duration
	GradingInterval    time.Duration
	GradingTimeout     time.Duration
	GenerationInterval time.Duration
	OpenAIAPIKey       string
	OpenAIModel        string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Quiz API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("problem.cache_ttl", "1m")
	v.SetDefault("grading.interval", "6s")
	v.SetDefault("grading.timeout", "60s")
	v.SetDefault("generation.interval", "60s")
	v.SetDefault("openai.model", "gpt-4o-mini")

	cacheTTL, err := parseDuration(v, "problem.cache_ttl")
	if err != nil {
		return Config{}, fmt.Errorf("invalid problem cache ttl: %w", err)
	}

	gradingInterval, err := parseDuration(v, "grading.interval")
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading interval: %w", err)
	}

	gradingTimeout, err := parseDuration(v, "grading.timeout")
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	generationInterval, err := parseDuration(v, "generation.interval")
	if err != nil {
		return Config{}, fmt.Errorf("invalid generation interval: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		ProblemCacheTTL:    cacheTTL,
		GradingInterval:    gradingInterval,
		GradingTimeout:     gradingTimeout,
		GenerationInterval: generationInterval,
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		OpenAIModel:        v.GetString("openai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value := v.GetString(key)
	if value == "" {
		return 0, fmt.Errorf("%s must not be empty", key)
	}

	return time.ParseDuration(value)
}
