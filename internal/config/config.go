package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/insight/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig              `mapstructure:"server"`
	Provider       ProviderConfig            `mapstructure:"provider"`
	Classifier     ClassifierConfig          `mapstructure:"classifier"`
	Orchestrator   OrchestratorConfig        `mapstructure:"orchestrator"`
	Recommendation RecommendationConfig      `mapstructure:"recommendation"`
	Storage        StorageConfig             `mapstructure:"storage"`
	LLM            LLMConfig                 `mapstructure:"llm"`
	Notifiers      map[string]NotifierConfig `mapstructure:"notifiers"`
	Dispatch       DispatchConfig            `mapstructure:"dispatch"`
	Metrics        MetricsConfig             `mapstructure:"metrics"`
	Schedule       ScheduleConfig            `mapstructure:"schedule"`
	Watchlist      []WatchlistItem           `mapstructure:"watchlist"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

type ProviderConfig struct {
	Yahoo YahooConfig `mapstructure:"yahoo"`
	Edgar EdgarConfig `mapstructure:"edgar"`
}

type YahooConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	HistoryDays int           `mapstructure:"history_days"`
}

type EdgarConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// ClassifierConfig holds the thresholds and sector/industry tables used by
// the ordered classification rules. All values are injected, not hardcoded.
type ClassifierConfig struct {
	StartupMarketCap    float64  `mapstructure:"startup_market_cap"`
	MatureMarketCap     float64  `mapstructure:"mature_market_cap"`
	GrowthThreshold     float64  `mapstructure:"growth_threshold"`
	CyclicalGrowthCap   float64  `mapstructure:"cyclical_growth_cap"`
	REITSectors         []string `mapstructure:"reit_sectors"`
	REITIndustries      []string `mapstructure:"reit_industries"`
	FinancialSectors    []string `mapstructure:"financial_sectors"`
	FinancialIndustries []string `mapstructure:"financial_industries"`
	CommoditySectors    []string `mapstructure:"commodity_sectors"`
	CommodityIndustries []string `mapstructure:"commodity_industries"`
	CyclicalSectors     []string `mapstructure:"cyclical_sectors"`
	ETFTickers          []string `mapstructure:"etf_tickers"`
}

type OrchestratorConfig struct {
	Workers         int           `mapstructure:"workers"`
	AnalyzerTimeout time.Duration `mapstructure:"analyzer_timeout"`
	WaveTimeout     time.Duration `mapstructure:"wave_timeout"`
}

type RecommendationConfig struct {
	// Per-method consensus weights. Methods absent from the table fall back
	// to DefaultWeight. The constants are tuning knobs, not a numeric
	// contract; scoring renormalizes by the sum of weights present.
	Weights       map[string]float64 `mapstructure:"weights"`
	DefaultWeight float64            `mapstructure:"default_weight"`
}

type StorageConfig struct {
	Hot  HotStorageConfig  `mapstructure:"hot"`
	Cold ColdStorageConfig `mapstructure:"cold"`
}

type HotStorageConfig struct {
	MaxAnalyses int `mapstructure:"max_analyses"`
}

type ColdStorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// LLMConfig configures the ordered provider chain. Providers are tried in
// the order listed; the first success wins.
type LLMConfig struct {
	Providers []string     `mapstructure:"providers"`
	Claude    ClaudeConfig `mapstructure:"claude"`
	OpenAI    OpenAIConfig `mapstructure:"openai"`
	Ollama    OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type NotifierConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type DispatchConfig struct {
	MinConfidence string `mapstructure:"min_confidence"` // High/Medium/Low
	CooldownHours int    `mapstructure:"cooldown_hours"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig controls the periodic watchlist run.
type ScheduleConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type WatchlistItem struct {
	Ticker string `mapstructure:"ticker"`
	Name   string `mapstructure:"name"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Mode:        "release",
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Provider: ProviderConfig{
			Yahoo: YahooConfig{
				BaseURL:     "https://query1.finance.yahoo.com",
				Timeout:     10 * time.Second,
				HistoryDays: 365,
			},
			Edgar: EdgarConfig{
				BaseURL:   "https://data.sec.gov",
				UserAgent: "insight-research admin@insight.local",
			},
		},
		Classifier: ClassifierConfig{
			StartupMarketCap:  5e9,
			MatureMarketCap:   50e9,
			GrowthThreshold:   0.15,
			CyclicalGrowthCap: 0.15,
			REITSectors:       []string{"Real Estate"},
			REITIndustries:    []string{"REIT"},
			FinancialSectors:  []string{"Financial", "Financial Services"},
			FinancialIndustries: []string{
				"Bank", "Banks - Diversified", "Banks - Regional",
			},
			CommoditySectors:    []string{"Energy", "Materials", "Basic Materials"},
			CommodityIndustries: []string{"Mining", "Gold", "Oil & Gas E&P"},
			CyclicalSectors:     []string{"Energy", "Materials", "Industrials"},
			ETFTickers: []string{
				"QQQ", "SPY", "IWM", "VTI", "VOO", "SLV", "GLD", "TLT", "EFA", "EEM",
			},
		},
		Orchestrator: OrchestratorConfig{
			Workers:         8,
			AnalyzerTimeout: 30 * time.Second,
			WaveTimeout:     60 * time.Second,
		},
		Recommendation: RecommendationConfig{
			Weights: map[string]float64{
				"dcf":               0.25,
				"comparable":        0.20,
				"technical":         0.15,
				"startup":           0.40,
				"analyst_consensus": 0.25,
				"ai_insights":       0.15,
			},
			DefaultWeight: 0.1,
		},
		Storage: StorageConfig{
			Hot: HotStorageConfig{
				MaxAnalyses: 1000,
			},
			Cold: ColdStorageConfig{
				Type: "localfs",
				Path: "data/archive",
			},
		},
		Dispatch: DispatchConfig{
			MinConfidence: "Medium",
			CooldownHours: 4,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Schedule: ScheduleConfig{
			Enabled:  false,
			Interval: 6 * time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Orchestrator.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("orchestrator workers must be positive, got %d", c.Orchestrator.Workers))
	}
	if c.Orchestrator.AnalyzerTimeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("analyzer_timeout must be positive, got %s", c.Orchestrator.AnalyzerTimeout))
	}
	if c.Orchestrator.WaveTimeout < c.Orchestrator.AnalyzerTimeout {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("wave_timeout (%s) must not be shorter than analyzer_timeout (%s)",
				c.Orchestrator.WaveTimeout, c.Orchestrator.AnalyzerTimeout))
	}

	for method, w := range c.Recommendation.Weights {
		if w <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("recommendation weight for %s must be positive, got %f", method, w))
		}
	}
	if c.Recommendation.DefaultWeight <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("default_weight must be positive, got %f", c.Recommendation.DefaultWeight))
	}

	if c.Classifier.StartupMarketCap <= 0 || c.Classifier.MatureMarketCap <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("classifier market-cap thresholds must be positive"))
	}

	if c.Schedule.Enabled && c.Schedule.Interval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("schedule interval must be positive, got %s", c.Schedule.Interval))
	}

	// LLM validation - each listed provider needs its own settings
	for _, p := range c.LLM.Providers {
		switch p {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when claude is in llm.providers"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when openai is in llm.providers"))
			}
		case "ollama":
			if c.LLM.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when ollama is in llm.providers"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider: %s", p))
		}
	}

	return nil
}
