package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Scorer   ScorerConfig   `yaml:"scorer" mapstructure:"scorer"`
	Executor ExecutorConfig `yaml:"executor" mapstructure:"executor"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Monitor  MonitorConfig  `yaml:"monitor" mapstructure:"monitor"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// Weights are the per-factor weights of the opportunity score. They should
// sum to 1.0.
type Weights struct {
	Revenue    float64 `yaml:"revenue" mapstructure:"revenue"`
	Growth     float64 `yaml:"growth" mapstructure:"growth"`
	Conversion float64 `yaml:"conversion" mapstructure:"conversion"`
	Profit     float64 `yaml:"profit" mapstructure:"profit"`
	Efficiency float64 `yaml:"efficiency" mapstructure:"efficiency"`
}

// ScorerConfig configures opportunity scoring and plan generation.
type ScorerConfig struct {
	RevenueThreshold    float64 `yaml:"revenue_threshold" mapstructure:"revenue_threshold"`
	GrowthRateThreshold float64 `yaml:"growth_rate_threshold" mapstructure:"growth_rate_threshold"`
	ConversionThreshold float64 `yaml:"conversion_threshold" mapstructure:"conversion_threshold"`

	// MinScore gates plan generation: candidates scoring below it are not
	// ranked. Zero disables the gate.
	MinScore      float64 `yaml:"min_score" mapstructure:"min_score"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxAdSpend    float64 `yaml:"max_ad_spend" mapstructure:"max_ad_spend"`
	RiskTolerance float64 `yaml:"risk_tolerance" mapstructure:"risk_tolerance"`

	Weights Weights `yaml:"weights" mapstructure:"weights"`
}

// ExecutorConfig configures the bounded action executor.
type ExecutorConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`

	// Effector selects the action effector: "simulated" or "http".
	Effector      string  `yaml:"effector" mapstructure:"effector"`
	Endpoint      string  `yaml:"endpoint" mapstructure:"endpoint"`
	RateLimitRPS  float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RetryAttempts int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// MonitorConfig configures health snapshots and threshold alerts.
type MonitorConfig struct {
	LookbackHours  int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	MaxFailRate    float64 `yaml:"max_fail_rate" mapstructure:"max_fail_rate"`
	MinSuccessRate float64 `yaml:"min_success_rate" mapstructure:"min_success_rate"`
	MaxIdleHours   int     `yaml:"max_idle_hours" mapstructure:"max_idle_hours"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCALING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scorer.revenue_threshold", 500.0)
	v.SetDefault("scorer.growth_rate_threshold", 20.0)
	v.SetDefault("scorer.conversion_threshold", 2.0)
	v.SetDefault("scorer.min_score", 0.0)
	v.SetDefault("scorer.max_concurrent", 5)
	v.SetDefault("scorer.max_ad_spend", 1000.0)
	v.SetDefault("scorer.risk_tolerance", 0.7)
	v.SetDefault("scorer.weights.revenue", 0.30)
	v.SetDefault("scorer.weights.growth", 0.25)
	v.SetDefault("scorer.weights.conversion", 0.20)
	v.SetDefault("scorer.weights.profit", 0.15)
	v.SetDefault("scorer.weights.efficiency", 0.10)
	v.SetDefault("executor.timeout_secs", 30)
	v.SetDefault("executor.effector", "simulated")
	v.SetDefault("executor.rate_limit_rps", 5.0)
	v.SetDefault("executor.retry_attempts", 3)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "scaling.db")
	v.SetDefault("monitor.lookback_hours", 24)
	v.SetDefault("monitor.max_fail_rate", 0.25)
	v.SetDefault("monitor.min_success_rate", 50.0)
	v.SetDefault("monitor.max_idle_hours", 6)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks fields required for the given mode ("cycle", "serve").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "cycle":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Executor.TimeoutSecs <= 0 {
		errs = append(errs, "executor.timeout_secs must be > 0")
	}
	switch c.Executor.Effector {
	case "simulated":
	case "http":
		if c.Executor.Endpoint == "" {
			errs = append(errs, "executor.endpoint is required for the http effector")
		}
	default:
		errs = append(errs, "executor.effector must be simulated or http")
	}
	if c.Scorer.MaxConcurrent < 1 || c.Scorer.MaxConcurrent > 50 {
		errs = append(errs, "scorer.max_concurrent must be between 1 and 50")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
