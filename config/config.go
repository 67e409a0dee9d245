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
	Port          string          `yaml:"port"`
	LogLevel      string          `yaml:"log_level"`
	LogFormat     string          `yaml:"log_format"`
	DBPath        string          `yaml:"db_path"`
	SQLFilesDir   string          `yaml:"sql_files_dir"`
	ResultsDir    string          `yaml:"results_dir"`
	ResultsFormat string          `yaml:"results_format"` // json, csv, or none
	CORSOrigins   []string        `yaml:"cors_origins"`
	Generator     GeneratorConfig `yaml:"generator"`
	Executor      ExecutorConfig  `yaml:"executor"`
	Session       SessionConfig   `yaml:"session"`
	SQLServer     SQLServerConfig `yaml:"sql_server"`
}

type GeneratorConfig struct {
	Provider          string        `yaml:"provider"` // stub, dashscope, openai
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	StubDelay         time.Duration `yaml:"stub_delay"`
}

type ExecutorConfig struct {
	Driver     string        `yaml:"driver"` // stub, sqlserver, sqlite
	SQLitePath string        `yaml:"sqlite_path"`
	StubDelay  time.Duration `yaml:"stub_delay"`
}

type SessionConfig struct {
	KeepStateOnRegenerate bool `yaml:"keep_state_on_regenerate"`
}

type SQLServerConfig struct {
	Server   string `yaml:"server"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	UserID   string `yaml:"user_id"`
	Password string `yaml:"password"`
	Encrypt  bool   `yaml:"encrypt"`
}

func GetConfig() Config {
	return Config{
		Port:          getEnv("PORT", "9090"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		DBPath:        getEnv("DB_PATH", "./data/badger"),
		SQLFilesDir:   getEnv("SQL_FILES_DIR", "./sql_files"),
		ResultsDir:    getEnv("RESULTS_DIR", "./results"),
		ResultsFormat: getEnv("RESULTS_FORMAT", "json"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		Generator: GeneratorConfig{
			Provider:          getEnv("GENERATOR_PROVIDER", "stub"),
			APIKey:            getEnv("GENERATOR_API_KEY", ""),
			Model:             getEnv("GENERATOR_MODEL", "qwen3-max"),
			BaseURL:           getEnv("GENERATOR_BASE_URL", ""),
			RequestsPerSecond: getEnvFloat("GENERATOR_RPS", 2),
			Burst:             getEnvInt("GENERATOR_BURST", 1),
			MaxRetries:        getEnvInt("GENERATOR_MAX_RETRIES", 3),
			Timeout:           getEnvDuration("GENERATOR_TIMEOUT", 120*time.Second),
			CacheTTL:          getEnvDuration("GENERATOR_CACHE_TTL", 5*time.Minute),
			StubDelay:         getEnvDuration("GENERATOR_STUB_DELAY", 1500*time.Millisecond),
		},
		Executor: ExecutorConfig{
			Driver:     getEnv("EXECUTOR_DRIVER", "stub"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/querydraft.db"),
			StubDelay:  getEnvDuration("EXECUTOR_STUB_DELAY", 800*time.Millisecond),
		},
		Session: SessionConfig{
			KeepStateOnRegenerate: getEnvBool("KEEP_STATE_ON_REGENERATE", false),
		},
		SQLServer: SQLServerConfig{
			Server:   getEnv("SQL_SERVER", ""),
			Port:     getEnv("SQL_PORT", "1433"),
			Database: getEnv("SQL_DATABASE", ""),
			UserID:   getEnv("SQL_USER", ""),
			Password: getEnv("SQL_PASSWORD", ""),
			Encrypt:  getEnvBool("SQL_ENCRYPT", true),
		},
	}
}

// Load returns the environment configuration overlaid with the YAML file at
// path, if any. Keys absent from the file keep their environment values.
func Load(path string) (Config, error) {
	cfg := GetConfig()
	if path == "" {
		path = os.Getenv("QUERYDRAFT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Generator.Provider {
	case "stub", "dashscope", "openai":
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	if c.Generator.Provider != "stub" && c.Generator.APIKey == "" {
		return fmt.Errorf("generator provider %q requires an API key", c.Generator.Provider)
	}
	switch c.Executor.Driver {
	case "stub", "sqlite":
	case "sqlserver":
		if c.SQLServer.Server == "" || c.SQLServer.Database == "" {
			return fmt.Errorf("SQL Server configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown executor driver %q", c.Executor.Driver)
	}
	switch c.ResultsFormat {
	case "json", "csv", "none":
	default:
		return fmt.Errorf("unknown results format %q", c.ResultsFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
