package config

import (
	"time"

	"giveaway/pkg/model"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "giveaway"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// A reservation left unconfirmed this long is reclaimed by the sweeper.
	DefaultReservationTTL  = 5 * time.Minute
	DefaultSweepInterval   = 1 * time.Minute
	DefaultAllocateRetries = 3

	DefaultKafkaEnabled = false
	DefaultKafkaTopic   = "giveaway.reservations"

	DefaultPaginationLimit = 100
)

// DefaultPrizes is the seeded pool used at bootstrap and by the reset-all
// admin operation. Returns a fresh slice so callers cannot mutate shared
// state.
func DefaultPrizes() []*model.Prize {
	return []*model.Prize{
		{ID: "grand", Name: "Grand Prize", Description: "One night, all inclusive", Icon: "trophy", Remaining: 1, Total: 1},
		{ID: "first", Name: "First Prize", Description: "Dinner for two", Icon: "medal", Remaining: 5, Total: 5},
		{ID: "second", Name: "Second Prize", Description: "Movie tickets", Icon: "ticket", Remaining: 10, Total: 10},
		{ID: "third", Name: "Third Prize", Description: "Coffee voucher", Icon: "cup", Remaining: 30, Total: 30},
	}
}
