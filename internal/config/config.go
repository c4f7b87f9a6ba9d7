package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"QuantChart/internal/model"
)

// Indicator is one study attached to every rendered chart.
type Indicator struct {
	Name   string `yaml:"name"`
	Params []int  `yaml:"params"`
}

// Config holds all application configuration.
type Config struct {
	// Source names the column preset charts default to.
	Source string `yaml:"source"`
	Theme  string `yaml:"theme"`

	Offline         bool   `yaml:"offline"`
	OfflineShowLink bool   `yaml:"offline_show_link"`
	OfflineLinkText string `yaml:"offline_link_text"`
	OfflineFormat   string `yaml:"offline_format"`
	OutputDir       string `yaml:"output_dir"`
	OpenBrowser     bool   `yaml:"open_browser"`

	Online struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"online"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Symbol   string `yaml:"symbol"`
		Days     int    `yaml:"days"`
		Interval string `yaml:"interval"`
	} `yaml:"data_source"`
	Chart struct {
		Adjust       bool           `yaml:"adjust"`
		AdjustVolume bool           `yaml:"adjust_volume"`
		Indicators   []Indicator    `yaml:"indicators"`
		Options      map[string]any `yaml:"options"`
	} `yaml:"chart"`
	Schedule struct {
		RenderCron string `yaml:"render_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads a .env file next to the
// process when present, then applies environment variable overrides and
// defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{Offline: true}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := []struct {
		key string
		dst *string
	}{
		{"QUANTCHART_SOURCE", &c.Source},
		{"QUANTCHART_THEME", &c.Theme},
		{"OUTPUT_DIR", &c.OutputDir},
		{"ONLINE_BASE_URL", &c.Online.BaseURL},
		{"ONLINE_API_KEY", &c.Online.APIKey},
		{"DATA_PROVIDER", &c.DataSource.Provider},
		{"VSTRADER_BASE_URL", &c.DataSource.BaseURL},
		{"VSTRADER_API_KEY", &c.DataSource.APIKey},
		{"SYMBOL", &c.DataSource.Symbol},
		{"CRON_RENDER", &c.Schedule.RenderCron},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"LOG_LEVEL", &c.Log.Level},
		{"LOG_FILE", &c.Log.File},
		{"HTTPS_PROXY", &c.Proxy},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}
	if v := os.Getenv("QUANTCHART_OFFLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: QUANTCHART_OFFLINE=%q", model.ErrConfiguration, v)
		}
		c.Offline = b
	}
	if v := os.Getenv("DATA_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DATA_DAYS=%q", model.ErrConfiguration, v)
		}
		c.DataSource.Days = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "yahoo"
	}
	if c.OfflineFormat == "" {
		c.OfflineFormat = "html"
	}
	if c.OfflineLinkText == "" {
		c.OfflineLinkText = "Export to plot.ly"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "vstrader"
		}
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "SPX500"
	}
	if c.DataSource.Days == 0 {
		c.DataSource.Days = 120
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "daily"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/quantchart.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configured combination can run.
func (c *Config) Validate() error {
	switch c.OfflineFormat {
	case "html", "png":
	default:
		return fmt.Errorf("%w: offline_format must be html or png, got %q", model.ErrConfiguration, c.OfflineFormat)
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("%w: data_source.base_url is required for vstrader", model.ErrConfiguration)
		}
		// vstrader bars carry no adjusted close.
		if c.Chart.Adjust || c.Chart.AdjustVolume {
			return fmt.Errorf("%w: chart.adjust needs an adjusted close, which vstrader does not provide", model.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown data_source.provider %q", model.ErrConfiguration, c.DataSource.Provider)
	}
	switch c.DataSource.Interval {
	case "daily", "weekly":
	default:
		return fmt.Errorf("%w: data_source.interval must be daily or weekly, got %q", model.ErrConfiguration, c.DataSource.Interval)
	}
	if c.DataSource.Days <= 0 {
		return fmt.Errorf("%w: data_source.days must be positive", model.ErrConfiguration)
	}
	if !c.Offline && c.Online.BaseURL == "" {
		return fmt.Errorf("%w: online.base_url is required when offline is false", model.ErrConfiguration)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("%w: telegram.bot_token and telegram.chat_id must be set together", model.ErrConfiguration)
	}
	for _, ind := range c.Chart.Indicators {
		if ind.Name == "" {
			return fmt.Errorf("%w: chart.indicators entry without a name", model.ErrConfiguration)
		}
	}
	return nil
}

// Notify reports whether Telegram reports are configured.
func (c *Config) Notify() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
