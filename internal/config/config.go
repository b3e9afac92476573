package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for botdock
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host" validate:"required"`
	Port         int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL      string   `mapstructure:"base_url" validate:"required,url"`
	AllowOrigins []string `mapstructure:"allow_origins" validate:"required,min=1"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// StorageConfig holds uploaded file storage configuration
type StorageConfig struct {
	Uploads string `mapstructure:"uploads" validate:"required"`
}

// OllamaConfig holds inference backend configuration
type OllamaConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	Model          string        `mapstructure:"model" validate:"required"`
	FallbackModels []string      `mapstructure:"fallback_models"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"required,min=1s,max=10m"`
}

// IngestConfig holds document ingestion limits
type IngestConfig struct {
	MaxPDFBytes      int64         `mapstructure:"max_pdf_bytes" validate:"required,gt=0"`
	MinContentLength int           `mapstructure:"min_content_length" validate:"required,gt=0"`
	MaxContentLength int           `mapstructure:"max_content_length" validate:"required,gt=0"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout" validate:"required,min=1s,max=2m"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("BOTDOCK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", "./data/botdock.db")
	v.SetDefault("storage.uploads", "./data/uploads")

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3:8b")
	v.SetDefault("ollama.fallback_models", []string{"llama3:8b", "llama2:7b", "mistral:7b", "codellama:7b"})
	v.SetDefault("ollama.timeout", 2*time.Minute)

	v.SetDefault("ingest.max_pdf_bytes", int64(10*1024*1024))
	v.SetDefault("ingest.min_content_length", 10)
	v.SetDefault("ingest.max_content_length", 50_000)
	v.SetDefault("ingest.fetch_timeout", 10*time.Second)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
