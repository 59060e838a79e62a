package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Payment    PaymentConfig    `validate:"required"`
	Billing    BillingConfig
	Recurring  RecurringConfig
	Retry      RetryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
	// CronTenantID scopes batch job runs when Mode is cron
	CronTenantID string `mapstructure:"cron_tenant_id"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host         string `validate:"required"`
	Port         int    `validate:"required"`
	User         string `validate:"required"`
	Password     string
	DBName       string `validate:"required"`
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type PaymentConfig struct {
	DefaultProvider types.PaymentProvider `mapstructure:"default_provider" validate:"required"`
	Paystack        PaystackConfig
	Flutterwave     FlutterwaveConfig
}

type PaystackConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type FlutterwaveConfig struct {
	SecretKey  string `mapstructure:"secret_key"`
	SecretHash string `mapstructure:"secret_hash"`
}

type BillingConfig struct {
	ReminderDaysBeforeDue int `mapstructure:"reminder_days_before_due"`
}

type RecurringConfig struct {
	MaxFailedAttempts int `mapstructure:"max_failed_attempts"`
}

type RetryConfig struct {
	MaxRetries        int `mapstructure:"max_retries"`
	BackoffCapMinutes int `mapstructure:"backoff_cap_minutes"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/clustr")

	v.SetEnvPrefix("CLUSTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeServer))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 20)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("payment.default_provider", string(types.PaymentProviderPaystack))
	v.SetDefault("billing.reminder_days_before_due", 3)
	v.SetDefault("recurring.max_failed_attempts", types.DefaultMaxFailedAttempts)
	v.SetDefault("retry.max_retries", types.DefaultMaxRetries)
	v.SetDefault("retry.backoff_cap_minutes", 30)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Payment.DefaultProvider.Validate()
}

// GetDefaultConfig returns a default configuration for local
// development and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Payment: PaymentConfig{
			DefaultProvider: types.PaymentProviderPaystack,
		},
		Billing:   BillingConfig{ReminderDaysBeforeDue: 3},
		Recurring: RecurringConfig{MaxFailedAttempts: types.DefaultMaxFailedAttempts},
		Retry:     RetryConfig{MaxRetries: types.DefaultMaxRetries, BackoffCapMinutes: 30},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User, c.Password, c.DBName, c.Host, c.Port, c.SSLMode,
	)
}
