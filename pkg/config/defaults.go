package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "staybook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultAccommodationServiceURL = "http://localhost:8081"
	DefaultUserServiceURL          = "http://localhost:8082"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// The advisory lock is held only for the duration of one overlap
	// check plus write, so a short TTL is enough to recover from a
	// crashed holder.
	DefaultReservationLockTTL = 10 * time.Second
	DefaultLockRetryAttempts  = 3
	DefaultLockRetryBackoff   = 100 * time.Millisecond
)
