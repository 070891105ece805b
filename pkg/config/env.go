package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr = "REDIS_ADDR"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingLockout       = "BOOKING_LOCKOUT"
	EnvCancellationCutoff   = "CANCELLATION_CUTOFF"
	EnvReferenceMaxAttempts = "REFERENCE_MAX_ATTEMPTS"
	EnvListingCacheTTL      = "LISTING_CACHE_TTL"

	EnvBookingConfirmedTopic = "BOOKING_CONFIRMED_TOPIC"
	EnvNotifierGroupID       = "NOTIFIER_GROUP_ID"
)
