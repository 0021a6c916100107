package config

import "time"

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "medsched"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultSlotCacheTTL = 5 * time.Minute

	DefaultKafkaEventTopic = "appointment-events"

	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxRequestSize  = 1 * 1024 * 1024 // 1MB
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultClinicTimezone = "Asia/Jerusalem"
	DefaultClinicOpen     = "10:00"
	DefaultClinicClose    = "19:00"

	// Friday and Saturday, the clinic's non-working days.
	DefaultClinicWeekendDays = "Friday,Saturday"

	// Fixed-date closures as MM-DD pairs.
	DefaultClinicHolidays = "01-01,05-14,09-30,10-09"

	DefaultServiceDurationMin = 60
	DefaultMaxAdvanceDays     = 90
	DefaultAltTimeCount       = 3
	DefaultAltDateCount       = 3
	DefaultAltDateHorizonDays = 14
	DefaultSameDayLeadTime    = 1 * time.Hour
	DefaultPhoneRegion        = "IL"
)
