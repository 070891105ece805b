package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "fitstudio"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = ""

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Booking closes two hours before a session starts; cancellation closes
	// four hours before. Both are studio policy, overridable per deployment.
	DefaultBookingLockout     = 2 * time.Hour
	DefaultCancellationCutoff = 4 * time.Hour

	DefaultReferenceMaxAttempts = 5
	DefaultListingCacheTTL      = 5 * time.Minute

	DefaultBookingConfirmedTopic = "booking.confirmed"
	DefaultNotifierGroupID       = "fitstudio-notifier"
)

const (
	MaxPaginationLimit     = 100
	DefaultPaginationLimit = 20
)

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	return offset
}
