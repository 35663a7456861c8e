package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable pool_max_conns=10",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

// Enabled reports whether a database is configured at all.
func (config *DbServer) Enabled() bool {
	return config.Host != ""
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type RatesAPI struct {
	BaseURL    string `mapstructure:"base_url"`
	APIVersion string `mapstructure:"api_version"`
}

type Cache struct {
	MaxSize       int   `mapstructure:"max_size"`
	CodesMaxItems int64 `mapstructure:"codes_max_items"`
}

type RateLimit struct {
	MinIntervalSeconds float64 `mapstructure:"min_interval_seconds"`
	Mode               string  `mapstructure:"mode"`
}

type Scheduler struct {
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	RatesAPI   RatesAPI   `mapstructure:"rates_api"`
	Cache      Cache      `mapstructure:"cache"`
	RateLimit  RateLimit  `mapstructure:"rate_limit"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Logging    Logging    `mapstructure:"logging"`
	DbServer   DbServer   `mapstructure:"db_server"`
}

const (
	DefaultConfigFile   = "config.yaml"
	DefaultRatesBaseURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0"
)

// Init reads configFile (yaml), then .env and the environment on top of it.
// Both files are optional.
func Init(configFile string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.allowed_origins", []string{"*"})
	v.SetDefault("http_client.timeout_seconds", 3)
	v.SetDefault("rates_api.base_url", DefaultRatesBaseURL)
	v.SetDefault("rates_api.api_version", "v1")
	v.SetDefault("cache.max_size", 3)
	v.SetDefault("cache.codes_max_items", 64)
	v.SetDefault("rate_limit.min_interval_seconds", 1)
	v.SetDefault("rate_limit.mode", "max_gap")
	v.SetDefault("scheduler.refresh_interval_sec", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("db_server.port", "5432")
	v.SetDefault("db_server.max_conns", 10)
}

func bindEnv(v *viper.Viper) {
	// http server env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// rates provider env vars
	_ = v.BindEnv("rates_api.base_url", "RATES_API_BASE_URL")
	_ = v.BindEnv("rates_api.api_version", "RATES_API_VERSION")

	// cache and limiter env vars
	_ = v.BindEnv("cache.max_size", "CACHE_MAX_SIZE")
	_ = v.BindEnv("rate_limit.min_interval_seconds", "RATE_LIMIT_MIN_INTERVAL_SECONDS")
	_ = v.BindEnv("rate_limit.mode", "RATE_LIMIT_MODE")

	_ = v.BindEnv("scheduler.refresh_interval_sec", "SCHEDULER_REFRESH_INTERVAL_SEC")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")
}
