package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Deck    DeckConfig    `mapstructure:"deck"`
	Study   StudyConfig   `mapstructure:"study"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects and configures the progress backend
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	Namespace string `mapstructure:"namespace"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	LogSQL    bool   `mapstructure:"log_sql"`
}

// DeckConfig locates the deck file
type DeckConfig struct {
	Path string `mapstructure:"path"`
}

// StudyConfig holds study session settings
type StudyConfig struct {
	DailyGoal int `mapstructure:"daily_goal"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverRedis    = "redis"
)

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Storage defaults
	viper.SetDefault("storage.driver", DriverSQLite)
	viper.SetDefault("storage.dsn", "")
	viper.SetDefault("storage.namespace", "flashdeck_")
	viper.SetDefault("storage.redis_addr", "localhost:6379")
	viper.SetDefault("storage.redis_db", 0)
	viper.SetDefault("storage.log_sql", false)

	viper.SetDefault("deck.path", "deck.yaml")
	viper.SetDefault("study.daily_goal", 5)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// StorageDriver returns the normalized storage driver name.
func (c *Config) StorageDriver() (string, error) {
	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch driver {
	case "", DriverSQLite, "sqlite":
		return DriverSQLite, nil
	case DriverPostgres, "postgresql":
		return DriverPostgres, nil
	case DriverPgx, DriverMemory, DriverRedis:
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
}

// StorageDSN returns the SQL connection string. SQLite falls back to a file under the user config directory.
func (c *Config) StorageDSN() (string, error) {
	if dsn := strings.TrimSpace(c.Storage.DSN); dsn != "" {
		return dsn, nil
	}
	driver, err := c.StorageDriver()
	if err != nil {
		return "", err
	}
	if driver != DriverSQLite {
		return "", fmt.Errorf("storage.dsn is required for driver %s", driver)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return "file:" + filepath.Join(dir, "flashdeck", "flashdeck.db") + "?_busy_timeout=5000", nil
}
