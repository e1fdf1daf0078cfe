package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE works on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Transfer modes accepted by TRANSFER_MODE.
const (
	TransferModeIgnore = "ignore"
	TransferModeMove   = "move"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Server
	Port     string
	BindAddr string
	AdminKey string

	// Database
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Ledger
	TransferMode string
	Timezone     string
	Location     *time.Location
	SeedDefaults bool

	// Change feed
	EventBuffer  int
	AMQPURL      string
	AMQPExchange string
}

var appConfig *Config

// Load loads configuration from .env, an optional pennywise.yaml and the environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the working directory for pennywise.yaml.
func LoadFile(path string) (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pennywise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log_level"),

		Port:     v.GetString("port"),
		BindAddr: v.GetString("bind_addr"),
		AdminKey: v.GetString("admin_key"),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		SQLitePath: v.GetString("sqlite_path"),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),

		TransferMode: strings.ToLower(v.GetString("transfer_mode")),
		Timezone:     v.GetString("timezone"),
		SeedDefaults: v.GetBool("seed_defaults"),

		EventBuffer:  v.GetInt("event_buffer"),
		AMQPURL:      v.GetString("amqp_url"),
		AMQPExchange: v.GetString("amqp_exchange"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("port", "8080")
	v.SetDefault("bind_addr", "127.0.0.1")
	v.SetDefault("admin_key", "")

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("sqlite_path", "./data/pennywise.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "pennywise")
	v.SetDefault("db_password", "pennywise")
	v.SetDefault("db_name", "pennywise")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("transfer_mode", TransferModeIgnore)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("seed_defaults", true)

	v.SetDefault("event_buffer", 64)
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "pennywise")
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or postgres)", c.DBDriver)
	}

	switch c.TransferMode {
	case TransferModeIgnore, TransferModeMove:
	default:
		return fmt.Errorf("unsupported TRANSFER_MODE %q (use ignore or move)", c.TransferMode)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.EventBuffer <= 0 {
		log.Printf("Warning: invalid EVENT_BUFFER value '%d', falling back to 64\n", c.EventBuffer)
		c.EventBuffer = 64
	}
	return nil
}
