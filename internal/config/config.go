package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Portal   PortalConfig   `mapstructure:"portal"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// EmailConfig holds the transactional email provider configuration.
// Resolved once at startup and injected; the from/admin addresses fall back
// to documented defaults when unset.
type EmailConfig struct {
	APIBaseURL   string        `mapstructure:"api_base_url"`
	APIKey       string        `mapstructure:"api_key"`
	FromAddress  string        `mapstructure:"from_address"`
	FromName     string        `mapstructure:"from_name"`
	AdminAddress string        `mapstructure:"admin_address"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// BillingConfig holds invoicing defaults
type BillingConfig struct {
	TaxRate        float64 `mapstructure:"tax_rate"`
	InvoiceDueDays int     `mapstructure:"invoice_due_days"`
}

// PortalConfig holds client portal settings used in invitation emails
type PortalConfig struct {
	LoginURL string `mapstructure:"login_url"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/studio.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Email defaults: documented fallbacks when the provider account
	// is not configured yet.
	viper.SetDefault("email.api_base_url", "https://api.resend.com")
	viper.SetDefault("email.from_address", "onboarding@pixelpine.dev")
	viper.SetDefault("email.from_name", "Pixel & Pine Studio")
	viper.SetDefault("email.admin_address", "hello@pixelpine.dev")
	viper.SetDefault("email.timeout", 10*time.Second)

	// Billing defaults
	viper.SetDefault("billing.tax_rate", 0.085)
	viper.SetDefault("billing.invoice_due_days", 30)

	// Portal defaults
	viper.SetDefault("portal.login_url", "https://portal.pixelpine.dev/login")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("email.api_key", "EMAIL_API_KEY")
	viper.BindEnv("email.from_address", "EMAIL_FROM_ADDRESS")
	viper.BindEnv("email.admin_address", "EMAIL_ADMIN_ADDRESS")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("portal.login_url", "PORTAL_LOGIN_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Email.APIKey == "" {
		return fmt.Errorf("email.api_key is required")
	}
	if c.Email.FromAddress == "" {
		return fmt.Errorf("email.from_address is required")
	}
	if c.Email.AdminAddress == "" {
		return fmt.Errorf("email.admin_address is required")
	}
	if c.Billing.TaxRate < 0 || c.Billing.TaxRate >= 1 {
		return fmt.Errorf("billing.tax_rate must be in [0, 1)")
	}
	if c.Billing.InvoiceDueDays <= 0 {
		return fmt.Errorf("billing.invoice_due_days must be positive")
	}
	return nil
}
