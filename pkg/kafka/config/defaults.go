package kafkaconfig

import "time"

const (
	DefaultKafkaBrokers = ""

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond

	DefaultConsumerMinBytes   = 1
	DefaultConsumerMaxBytes   = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait    = 500 * time.Millisecond
	DefaultConsumerMaxRetries = 3
)
