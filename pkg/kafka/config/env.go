package kafkaconfig

const (
	EnvKafkaBrokers              = "KAFKA_BROKERS"
	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaConsumerMinBytes     = "KAFKA_CONSUMER_MIN_BYTES"
	EnvKafkaConsumerMaxBytes     = "KAFKA_CONSUMER_MAX_BYTES"
	EnvKafkaConsumerMaxWait      = "KAFKA_CONSUMER_MAX_WAIT"
	EnvKafkaConsumerMaxRetries   = "KAFKA_CONSUMER_MAX_RETRIES"
)
