package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Invite    InviteConfig    `yaml:"invite"`
	Database  DatabaseConfig  `yaml:"database"`
	OpsAPI    OpsAPIConfig    `yaml:"ops_api"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// TelegramConfig contains bot transport settings
type TelegramConfig struct {
	Token         string `yaml:"token"`
	GroupID       int64  `yaml:"group_id"`
	SourceTopicID int    `yaml:"source_topic_id"` // relay source; 0 disables the relay
	DestTopicID   int    `yaml:"dest_topic_id"`   // relay destination; 0 disables the relay
}

// InviteConfig contains invite-link issuance policy
type InviteConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
	MaxBatch   int `yaml:"max_batch"`
}

// DatabaseConfig contains persistent store settings. Driver is "sqlite"
// (file-backed, the default) or "postgres".
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite only
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// OpsAPIConfig contains the admin/ops HTTP endpoint settings. The endpoint
// is disabled unless a bearer secret is configured.
type OpsAPIConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings. An empty spec disables
// the job.
type SchedulerConfig struct {
	SweepExpiredLinks string `yaml:"sweep_expired_links"`
}

// Load reads configuration from a YAML file, applies environment variable
// overrides and validates the result.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Telegram
	if val := os.Getenv("BOT_TOKEN"); val != "" {
		c.Telegram.Token = val
	}
	if val := os.Getenv("GROUP_ID"); val != "" {
		fmt.Sscanf(val, "%d", &c.Telegram.GroupID)
	}
	if val := os.Getenv("SOURCE_TOPIC_ID"); val != "" {
		fmt.Sscanf(val, "%d", &c.Telegram.SourceTopicID)
	}
	if val := os.Getenv("DEST_TOPIC_ID"); val != "" {
		fmt.Sscanf(val, "%d", &c.Telegram.DestTopicID)
	}

	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Ops API
	if val := os.Getenv("OPS_API_SECRET"); val != "" {
		c.OpsAPI.Secret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks required settings and fills in defaults.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if c.Telegram.GroupID == 0 {
		return fmt.Errorf("target group id is required")
	}

	// Invite defaults
	if c.Invite.TTLMinutes <= 0 {
		c.Invite.TTLMinutes = 5
	}
	if c.Invite.MaxBatch <= 0 {
		c.Invite.MaxBatch = 20
	}

	// Database defaults: local file-backed store
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "data/invitebot.db"
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// Ops API defaults
	if c.OpsAPI.Port != 0 && (c.OpsAPI.Port < 0 || c.OpsAPI.Port > 65535) {
		return fmt.Errorf("invalid ops api port: %d", c.OpsAPI.Port)
	}
	if c.OpsAPI.Port == 0 {
		c.OpsAPI.Port = 8090
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	return nil
}

// RelayConfigured reports whether both relay topics are set.
func (c *Config) RelayConfigured() bool {
	return c.Telegram.SourceTopicID != 0 && c.Telegram.DestTopicID != 0
}

// GetDatabaseConnectionString returns the DSN for the configured driver.
func (c *Config) GetDatabaseConnectionString() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetOpsAPIAddress returns the ops HTTP endpoint bind address.
func (c *Config) GetOpsAPIAddress() string {
	return fmt.Sprintf("%s:%d", c.OpsAPI.Host, c.OpsAPI.Port)
}
