package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	KafkaBrokers           []string `envconfig:"KAFKA_BROKERS"`
	KafkaNotificationTopic string   `envconfig:"KAFKA_NOTIFICATION_TOPIC" default:"order-notifications"`

	DelaySchedule string `envconfig:"DELAY_MONITOR_SCHEDULE" default:"0 */5 * * * *"`
	AuditSchedule string `envconfig:"AUDIT_CONSISTENCY_SCHEDULE" default:"0 0 * * * *"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	JaegerEndpoint string `envconfig:"JAEGER_ENDPOINT"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DSN is the postgres:// URL understood by both gorm and golang-migrate.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSslMode}}.Encode(),
	}
	return u.String()
}

// NotificationsEnabled reports whether a Kafka broker is configured.
func (c Config) NotificationsEnabled() bool {
	for _, b := range c.KafkaBrokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}
