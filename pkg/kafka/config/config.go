package kafkaconfig

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the Kafka connection settings shared by the notifier
// producer and consumer. Brokers empty means eventing is disabled and the
// application falls back to log-only notifications.
type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration

	ConsumerMinBytes   int
	ConsumerMaxBytes   int
	ConsumerMaxWait    time.Duration
	ConsumerMaxRetries int
}

func Load() *Config {
	var brokers []string
	if raw := getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &Config{
		Brokers: brokers,

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),

		ConsumerMinBytes:   getEnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
		ConsumerMaxBytes:   getEnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
		ConsumerMaxWait:    getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerMaxRetries: getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
	}
}

// Enabled reports whether any broker is configured.
func (c *Config) Enabled() bool {
	return len(c.Brokers) > 0
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
