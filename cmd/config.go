package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds every setting of the service. Values come from the environment, with a
// .env file in the working directory loaded first when present.
type Config struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSslMode  string `mapstructure:"DB_SSLMODE"`

	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	OrderNumberPrefix string `mapstructure:"ORDER_NUMBER_PREFIX"`

	KafkaBrokers          string `mapstructure:"KAFKA_BROKERS"`
	KafkaReportReadyTopic string `mapstructure:"KAFKA_REPORT_READY_TOPIC"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`

	AutoAssignEnabled       bool   `mapstructure:"AUTO_ASSIGN_ENABLED"`
	AutoAssignSchedule      string `mapstructure:"AUTO_ASSIGN_SCHEDULE"`
	AutoAssignLimit         int    `mapstructure:"AUTO_ASSIGN_LIMIT"`
	LabQueueMetricsSchedule string `mapstructure:"LAB_QUEUE_METRICS_SCHEDULE"`
}

var configKeys = []string{
	"HTTP_PORT", "ENV", "LOG_LEVEL",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "ORDER_NUMBER_PREFIX",
	"KAFKA_BROKERS", "KAFKA_REPORT_READY_TOPIC",
	"JWT_SIGNING_KEY",
	"AUTO_ASSIGN_ENABLED", "AUTO_ASSIGN_SCHEDULE", "AUTO_ASSIGN_LIMIT", "LAB_QUEUE_METRICS_SCHEDULE",
}

// LoadConfig reads the configuration. A missing .env file is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ORDER_NUMBER_PREFIX", "labdesk")
	v.SetDefault("KAFKA_REPORT_READY_TOPIC", "labdesk.report-ready")
	v.SetDefault("AUTO_ASSIGN_ENABLED", false)
	v.SetDefault("AUTO_ASSIGN_SCHEDULE", "*/30 * * * * *")
	v.SetDefault("AUTO_ASSIGN_LIMIT", 50)
	v.SetDefault("LAB_QUEUE_METRICS_SCHEDULE", "*/15 * * * * *")

	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, at first use.
func (c Config) Validate() error {
	var errList []error
	if c.HTTPPort == "" {
		errList = append(errList, errors.New("HTTP_PORT is required"))
	}
	if c.AutoAssignLimit <= 0 {
		errList = append(errList, fmt.Errorf("AUTO_ASSIGN_LIMIT must be positive, got %d", c.AutoAssignLimit))
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.AutoAssignSchedule); err != nil {
		errList = append(errList, fmt.Errorf("AUTO_ASSIGN_SCHEDULE: %w", err))
	}
	if _, err := parser.Parse(c.LabQueueMetricsSchedule); err != nil {
		errList = append(errList, fmt.Errorf("LAB_QUEUE_METRICS_SCHEDULE: %w", err))
	}
	if c.UsesPostgres() && c.RedisAddr == "" {
		errList = append(errList, errors.New("REDIS_ADDR is required when DB_HOST is set"))
	}
	if c.Env == "production" && c.JWTSigningKey == "" {
		errList = append(errList, errors.New("JWT_SIGNING_KEY is required in production"))
	}
	return errors.Join(errList...)
}

// UsesPostgres reports whether a database is configured. Without one the service runs
// on the in-memory store.
func (c Config) UsesPostgres() bool {
	return c.DBHost != ""
}

// DSN is the gorm/pgx connection string for DBName.
func (c Config) DSN() string {
	return c.dsn(c.DBName)
}

// AdminDSN connects to the maintenance database, used to create DBName.
func (c Config) AdminDSN() string {
	return c.dsn("postgres")
}

func (c Config) dsn(database string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, database, c.DBSslMode)
}

// Brokers splits KAFKA_BROKERS on commas.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
