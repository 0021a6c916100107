package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr    = "REDIS_ADDR"
	EnvSlotCacheTTL = "SLOT_CACHE_TTL"

	EnvKafkaBrokers    = "KAFKA_BROKERS"
	EnvKafkaEventTopic = "KAFKA_EVENT_TOPIC"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvMaxRequestSize  = "MAX_REQUEST_SIZE"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvClinicTimezone     = "CLINIC_TIMEZONE"
	EnvClinicOpen         = "CLINIC_OPEN"
	EnvClinicClose        = "CLINIC_CLOSE"
	EnvClinicWeekendDays  = "CLINIC_WEEKEND_DAYS"
	EnvClinicHolidays     = "CLINIC_HOLIDAYS"
	EnvDefaultDurationMin = "DEFAULT_SERVICE_DURATION_MIN"
	EnvMaxAdvanceDays     = "MAX_ADVANCE_DAYS"
	EnvAltTimeCount       = "ALTERNATIVE_TIME_COUNT"
	EnvAltDateCount       = "ALTERNATIVE_DATE_COUNT"
	EnvAltDateHorizonDays = "ALTERNATIVE_DATE_HORIZON_DAYS"
	EnvSameDayLeadTime    = "SAME_DAY_LEAD_TIME"
	EnvPhoneRegion        = "PHONE_REGION"
)
