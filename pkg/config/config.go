package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	MySQL        MySQLConfig        `yaml:"mysql"`
	Redis        RedisConfig        `yaml:"redis"`
	Site         SiteConfig         `yaml:"site"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Notification NotificationConfig `yaml:"notification"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Logger       LoggerConfig       `yaml:"logger"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port       int    `yaml:"port"`
	Mode       string `yaml:"mode"`        // debug, release
	CronSecret string `yaml:"cron_secret"` // bearer token for the protected endpoints (optional, if empty, auth is disabled)
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig Redis configuration (run lock + scheduler; optional)
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SiteConfig static site context fed to the analysis stage
type SiteConfig struct {
	Name             string            `yaml:"name"`
	Type             string            `yaml:"type"`
	Pages            []string          `yaml:"pages"`
	ConversionEvents map[string]string `yaml:"conversion_events"` // event name -> raw metric key
}

// MetricsConfig analytics provider configuration
type MetricsConfig struct {
	BaseURL     string `yaml:"base_url"`
	PropertyID  string `yaml:"property_id"`
	AccessToken string `yaml:"access_token"`
}

// AnalysisConfig analysis model configuration (OpenAI-compatible endpoint)
type AnalysisConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	RPM     int    `yaml:"rpm"` // requests per minute budget for the model endpoint
}

// NotificationConfig chat notification configuration.
// Empty webhook URL disables notifications rather than erroring.
type NotificationConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

// ScheduleConfig pipeline scheduling configuration
type ScheduleConfig struct {
	WeeklyCron        string `yaml:"weekly_cron"`         // cron spec for the weekly collect, e.g. "0 6 * * 1"
	StaleAfterMinutes int    `yaml:"stale_after_minutes"` // reaper threshold for stuck reports
	ReaperInterval    int    `yaml:"reaper_interval"`     // reaper cadence (minutes)
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	cfg.applyEnvFallbacks()
	cfg.applyDefaults()

	GlobalConfig = &cfg
	return nil
}

// applyEnvFallbacks lets secrets come from the environment when the
// config file leaves them empty, so the file can be committed without them.
func (c *Config) applyEnvFallbacks() {
	if c.Server.CronSecret == "" {
		c.Server.CronSecret = os.Getenv("CRON_SECRET")
	}
	if c.Metrics.AccessToken == "" {
		c.Metrics.AccessToken = os.Getenv("METRICS_ACCESS_TOKEN")
	}
	if c.Analysis.APIKey == "" {
		c.Analysis.APIKey = os.Getenv("ANALYSIS_API_KEY")
	}
	if c.Notification.SlackWebhookURL == "" {
		c.Notification.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Schedule.WeeklyCron == "" {
		// Monday 06:00, after the provider has finalized Sunday's numbers
		c.Schedule.WeeklyCron = "0 6 * * 1"
	}
	if c.Schedule.StaleAfterMinutes <= 0 {
		c.Schedule.StaleAfterMinutes = 60
	}
	if c.Schedule.ReaperInterval <= 0 {
		c.Schedule.ReaperInterval = 30
	}
	if c.Analysis.RPM <= 0 {
		c.Analysis.RPM = 10
	}
}
