package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/neural-health/internal/domain/history"
)

// History drivers.
const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server struct {
		Port                int      `yaml:"port"`
		ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
		WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
		CORSOrigins         []string `yaml:"corsOrigins"`
		MaxUploadMB         int      `yaml:"maxUploadMB"`
		// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
		TrustProxy          bool     `yaml:"trustProxy"`
	} `yaml:"server"`

	Predictor struct {
		BaseURL        string `yaml:"baseURL"`
		TextPath       string `yaml:"textPath"`
		ImagePath      string `yaml:"imagePath"`
		ImageEnabled   bool   `yaml:"imageEnabled"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"predictor"`

	History struct {
		Driver     string `yaml:"driver"`
		MaxEntries int    `yaml:"maxEntries"`
	} `yaml:"history"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLMinutes int    `yaml:"ttlMinutes"`
	} `yaml:"redis"`

	Minio struct {
		Enabled           bool   `yaml:"enabled"`
		Endpoint          string `yaml:"endpoint"`
		AccessKey         string `yaml:"accessKey"`
		SecretKey         string `yaml:"secretKey"`
		BucketName        string `yaml:"bucketName"`
		Region            string `yaml:"region"`
		UseSSL            bool   `yaml:"useSSL"`
		PresignTTLMinutes int    `yaml:"presignTTLMinutes"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"openai"`

	Auth struct {
		APIKeys []string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requestsPerMinute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rateLimit"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file or env override is given.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeoutSeconds = 15
	c.Server.WriteTimeoutSeconds = 60
	c.Server.CORSOrigins = []string{"*"}
	c.Server.MaxUploadMB = 10
	c.Predictor.BaseURL = "http://localhost:8000"
	c.Predictor.TextPath = "/predict"
	c.Predictor.ImagePath = "/predict-image"
	c.Predictor.ImageEnabled = true
	c.History.Driver = DriverMemory
	c.History.MaxEntries = history.MaxEntries
	c.Database.Port = 3306
	c.Redis.Addr = "localhost:6379"
	c.Minio.BucketName = "symptom-images"
	c.Minio.Region = "us-east-1"
	c.OpenAI.Model = "gpt-4o-mini"
	c.RateLimit.RequestsPerMinute = 60
	c.RateLimit.Burst = 10
	c.Logging.Level = "info"
	c.Logging.Format = "json"
	c.Logging.Output = "stdout"
	return &c
}

// Load baca file config.yaml, lalu env override.
// A missing file is not an error; defaults and env still apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envInt("PORT", c.Server.Port)
	c.Predictor.BaseURL = envOrDefault("PREDICTOR_BASE_URL", c.Predictor.BaseURL)
	c.Predictor.TimeoutSeconds = envInt("PREDICTOR_TIMEOUT_SECONDS", c.Predictor.TimeoutSeconds)
	c.History.Driver = strings.ToLower(envOrDefault("HISTORY_DRIVER", c.History.Driver))
	c.Database.Host = envOrDefault("MYSQL_HOST", c.Database.Host)
	c.Database.Password = envOrDefault("MYSQL_PASSWORD", c.Database.Password)
	c.Postgres.DSN = envOrDefault("POSTGRES_DSN", c.Postgres.DSN)
	c.Redis.Addr = envOrDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envOrDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Minio.AccessKey = envOrDefault("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = envOrDefault("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.OpenAI.APIKey = envOrDefault("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = envOrDefault("OPENAI_MODEL", c.OpenAI.Model)
	c.Logging.Level = envOrDefault("LOG_LEVEL", c.Logging.Level)
	if keys := strings.TrimSpace(os.Getenv("API_KEYS")); keys != "" {
		c.Auth.APIKeys = splitCSV(keys)
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Predictor.BaseURL) == "" {
		return errors.New("predictor.baseURL is required")
	}
	switch c.History.Driver {
	case DriverMemory, DriverMySQL, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unknown history driver %q", c.History.Driver)
	}
	if c.History.Driver == DriverPostgres && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required for the postgres history driver")
	}
	if c.History.MaxEntries < 1 || c.History.MaxEntries > history.MaxEntries {
		return fmt.Errorf("history.maxEntries must be between 1 and %d, got %d", history.MaxEntries, c.History.MaxEntries)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PredictorTimeout() time.Duration {
	return time.Duration(c.Predictor.TimeoutSeconds) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
