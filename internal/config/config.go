package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	NotifierSMTP = "smtp"
	NotifierNATS = "nats"
	NotifierLog  = "log"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Notifier  NotifierConfig
	Telemetry TelemetryConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

type SchedulerConfig struct {
	Enabled      bool
	Spec         string
	Location     *time.Location
	StartupDelay time.Duration
	SendInterval time.Duration
	SendTimeout  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
}

type NotifierConfig struct {
	Driver  string
	SMTP    SMTPConfig
	NATSURL string
}

type TelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// Load reads configuration from the environment. Variables from an optional
// .env file (ENV_FILE, default ".env") fill in anything not already set.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("SERVER_READ_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	// A manual trigger runs a whole pass inside the request.
	writeTimeout, err := time.ParseDuration(getEnv("SERVER_WRITE_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	database, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	scheduler, err := loadScheduler()
	if err != nil {
		return nil, err
	}

	notifier, err := loadNotifier()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         serverPort,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Database:  database,
		Scheduler: scheduler,
		Notifier:  notifier,
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    getEnv("SERVICE_NAME", "overdue-reminder"),
			ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
			Environment:    getEnv("ENVIRONMENT", "local"),
		},
	}, nil
}

func loadDatabase() (DatabaseConfig, error) {
	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "25"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	slowThreshold, err := time.ParseDuration(getEnv("DB_SLOW_THRESHOLD", "200ms"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_SLOW_THRESHOLD: %w", err)
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return DatabaseConfig{}, fmt.Errorf("POSTGRES_DSN environment variable is required")
	}

	return DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		SlowThreshold:   slowThreshold,
	}, nil
}

func loadScheduler() (SchedulerConfig, error) {
	enabled, err := strconv.ParseBool(getEnv("REMINDER_ENABLED", "true"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid REMINDER_ENABLED: %w", err)
	}

	location, err := time.LoadLocation(getEnv("REMINDER_TIMEZONE", "UTC"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid REMINDER_TIMEZONE: %w", err)
	}

	startupDelay, err := time.ParseDuration(getEnv("REMINDER_STARTUP_DELAY", "30s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid REMINDER_STARTUP_DELAY: %w", err)
	}

	sendInterval, err := time.ParseDuration(getEnv("REMINDER_SEND_INTERVAL", "1s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid REMINDER_SEND_INTERVAL: %w", err)
	}

	sendTimeout, err := time.ParseDuration(getEnv("REMINDER_SEND_TIMEOUT", "30s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid REMINDER_SEND_TIMEOUT: %w", err)
	}

	if sendTimeout <= 0 {
		return SchedulerConfig{}, fmt.Errorf("invalid REMINDER_SEND_TIMEOUT: must be positive")
	}

	return SchedulerConfig{
		Enabled:      enabled,
		Spec:         getEnv("REMINDER_CRON", "0 * * * *"),
		Location:     location,
		StartupDelay: startupDelay,
		SendInterval: sendInterval,
		SendTimeout:  sendTimeout,
	}, nil
}

func loadNotifier() (NotifierConfig, error) {
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return NotifierConfig{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	startTLS, err := strconv.ParseBool(getEnv("SMTP_STARTTLS", "true"))
	if err != nil {
		return NotifierConfig{}, fmt.Errorf("invalid SMTP_STARTTLS: %w", err)
	}

	cfg := NotifierConfig{
		Driver: strings.ToLower(getEnv("NOTIFIER_DRIVER", NotifierLog)),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			FromName: getEnv("SMTP_FROM_NAME", "Task Reminders"),
			StartTLS: startTLS,
		},
		NATSURL: os.Getenv("NATS_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return NotifierConfig{}, err
	}

	return cfg, nil
}

func (c *NotifierConfig) Validate() error {
	switch c.Driver {
	case NotifierSMTP:
		if c.SMTP.Host == "" {
			return errors.New("SMTP_HOST is required for the smtp notifier")
		}

		if c.SMTP.From == "" {
			return errors.New("SMTP_FROM is required for the smtp notifier")
		}

		if c.SMTP.Username != "" && c.SMTP.Password == "" {
			return errors.New("SMTP_PASSWORD is required when SMTP_USERNAME is set")
		}
	case NotifierNATS:
		if c.NATSURL == "" {
			return errors.New("NATS_URL is required for the nats notifier")
		}
	case NotifierLog:
	default:
		return fmt.Errorf("invalid NOTIFIER_DRIVER %q: must be one of smtp, nats, log", c.Driver)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
