package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Port           int
	LogLevel       string
	GinMode        string
	HTTPTimeout    time.Duration
	GitHub         GitHubConfig
	Database       DatabaseConfig
	LLM            LLMConfig
	RateLimitRPS   float64
	RateLimitBurst int
}

type GitHubConfig struct {
	Token   string
	BaseURL string
}

type DatabaseConfig struct {
	URL             string
	MongoDatabase   string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LLMConfig selects and configures the generative-text provider.
type LLMConfig struct {
	Provider string // gemini, openai, anthropic, ollama
	APIKey   string
	Model    string
	BaseURL  string
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load reads configuration from the given env file (if present) and the process environment.
// An empty configFile means ".env".
func (c *Config) Load(configFile string) error {
	if configFile == "" {
		configFile = ".env"
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", 5000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("MONGO_DATABASE", "codedrip")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Required fields
	c.GitHub.Token = v.GetString("GITHUB_TOKEN")
	if c.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}

	c.Database.URL = v.GetString("DATABASE_URL")
	if c.Database.URL == "" {
		c.Database.URL = v.GetString("MONGO_URI")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL or MONGO_URI is required")
	}

	c.LLM.Provider = v.GetString("LLM_PROVIDER")
	c.LLM.APIKey = v.GetString("LLM_API_KEY")
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = v.GetString("GOOGLE_API_KEY")
	}
	if c.LLM.APIKey == "" && c.LLM.Provider != "ollama" {
		return fmt.Errorf("LLM_API_KEY (or GOOGLE_API_KEY) is required for provider %q", c.LLM.Provider)
	}
	c.LLM.Model = v.GetString("LLM_MODEL")
	c.LLM.BaseURL = v.GetString("LLM_BASE_URL")

	// Optional fields with defaults
	c.Port = v.GetInt("PORT")
	if c.Port <= 0 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	c.LogLevel = v.GetString("LOG_LEVEL")
	c.GinMode = v.GetString("GIN_MODE")
	c.GitHub.BaseURL = v.GetString("GITHUB_API_URL")
	c.Database.MongoDatabase = v.GetString("MONGO_DATABASE")
	c.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	c.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	c.RateLimitRPS = v.GetFloat64("RATE_LIMIT_RPS")
	c.RateLimitBurst = v.GetInt("RATE_LIMIT_BURST")

	var err error
	c.Database.ConnMaxLifetime, err = time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return fmt.Errorf("invalid DB_CONN_MAX_LIFETIME format: %w", err)
	}
	c.HTTPTimeout, err = time.ParseDuration(v.GetString("HTTP_TIMEOUT"))
	if err != nil {
		return fmt.Errorf("invalid HTTP_TIMEOUT format: %w", err)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
