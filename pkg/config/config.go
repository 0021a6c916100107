package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"medsched/pkg/logger"
)

type Config struct {
	Port string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr    string
	SlotCacheTTL time.Duration

	KafkaBrokers    []string
	KafkaEventTopic string

	RequestTimeout  time.Duration
	MaxRequestSize  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ClinicTimezone     string
	ClinicOpen         string
	ClinicClose        string
	ClinicWeekendDays  []time.Weekday
	ClinicHolidays     []string
	DefaultDurationMin int
	MaxAdvanceDays     int
	AltTimeCount       int
	AltDateCount       int
	AltDateHorizonDays int
	SameDayLeadTime    time.Duration
	PhoneRegion        string

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:    getEnvStr(EnvRedisAddr, ""),
		SlotCacheTTL: getEnvDuration(EnvSlotCacheTTL, DefaultSlotCacheTTL),

		KafkaBrokers:    splitList(getEnvStr(EnvKafkaBrokers, "")),
		KafkaEventTopic: getEnvStr(EnvKafkaEventTopic, DefaultKafkaEventTopic),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize:  getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		ClinicTimezone:     getEnvStr(EnvClinicTimezone, DefaultClinicTimezone),
		ClinicOpen:         getEnvStr(EnvClinicOpen, DefaultClinicOpen),
		ClinicClose:        getEnvStr(EnvClinicClose, DefaultClinicClose),
		ClinicWeekendDays:  parseWeekdays(getEnvStr(EnvClinicWeekendDays, DefaultClinicWeekendDays)),
		ClinicHolidays:     splitList(getEnvStr(EnvClinicHolidays, DefaultClinicHolidays)),
		DefaultDurationMin: getEnvNum(EnvDefaultDurationMin, DefaultServiceDurationMin),
		MaxAdvanceDays:     getEnvNum(EnvMaxAdvanceDays, DefaultMaxAdvanceDays),
		AltTimeCount:       getEnvNum(EnvAltTimeCount, DefaultAltTimeCount),
		AltDateCount:       getEnvNum(EnvAltDateCount, DefaultAltDateCount),
		AltDateHorizonDays: getEnvNum(EnvAltDateHorizonDays, DefaultAltDateHorizonDays),
		SameDayLeadTime:    getEnvDuration(EnvSameDayLeadTime, DefaultSameDayLeadTime),
		PhoneRegion:        getEnvStr(EnvPhoneRegion, DefaultPhoneRegion),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

var (
	timeOfDayRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
	monthDayRegex  = regexp.MustCompile(`^(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)
	mongoURIRegex  = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" || !mongoURIRegex.MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if _, err := time.LoadLocation(cfg.ClinicTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("ClinicTimezone is not a valid IANA zone: %s", cfg.ClinicTimezone))
	}
	if !timeOfDayRegex.MatchString(cfg.ClinicOpen) {
		problems = append(problems, fmt.Sprintf("ClinicOpen must be in HH:MM format, got: %s", cfg.ClinicOpen))
	}
	if !timeOfDayRegex.MatchString(cfg.ClinicClose) {
		problems = append(problems, fmt.Sprintf("ClinicClose must be in HH:MM format, got: %s", cfg.ClinicClose))
	}
	for _, h := range cfg.ClinicHolidays {
		if !monthDayRegex.MatchString(h) {
			problems = append(problems, fmt.Sprintf("ClinicHolidays entries must be MM-DD, got: %s", h))
		}
	}

	if cfg.DefaultDurationMin <= 0 {
		problems = append(problems, fmt.Sprintf("DefaultDurationMin must be positive, got: %d", cfg.DefaultDurationMin))
	}
	if cfg.MaxAdvanceDays <= 0 {
		problems = append(problems, fmt.Sprintf("MaxAdvanceDays must be positive, got: %d", cfg.MaxAdvanceDays))
	}
	if cfg.AltTimeCount < 0 || cfg.AltDateCount < 0 {
		problems = append(problems, "alternative counts cannot be negative")
	}
	if cfg.AltDateHorizonDays <= 0 {
		problems = append(problems, fmt.Sprintf("AltDateHorizonDays must be positive, got: %d", cfg.AltDateHorizonDays))
	}
	if cfg.SameDayLeadTime < 0 {
		problems = append(problems, fmt.Sprintf("SameDayLeadTime cannot be negative, got: %s", cfg.SameDayLeadTime))
	}
	if cfg.PhoneRegion == "" {
		problems = append(problems, "PhoneRegion cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"RequestTimeout":  cfg.RequestTimeout,
		"ReadTimeout":     cfg.ReadTimeout,
		"WriteTimeout":    cfg.WriteTimeout,
		"IdleTimeout":     cfg.IdleTimeout,
		"ShutdownTimeout": cfg.ShutdownTimeout,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"redis_addr", cfg.RedisAddr,
		"slot_cache_ttl", cfg.SlotCacheTTL,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_event_topic", cfg.KafkaEventTopic,
		"clinic_timezone", cfg.ClinicTimezone,
		"clinic_open", cfg.ClinicOpen,
		"clinic_close", cfg.ClinicClose,
		"clinic_weekend_days", weekdayNames(cfg.ClinicWeekendDays),
		"clinic_holidays", cfg.ClinicHolidays,
		"default_duration_min", cfg.DefaultDurationMin,
		"max_advance_days", cfg.MaxAdvanceDays,
		"alt_time_count", cfg.AltTimeCount,
		"alt_date_count", cfg.AltDateCount,
		"alt_date_horizon_days", cfg.AltDateHorizonDays,
		"same_day_lead_time", cfg.SameDayLeadTime,
		"phone_region", cfg.PhoneRegion,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
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

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseWeekdays(s string) []time.Weekday {
	byName := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	var days []time.Weekday
	for _, name := range splitList(s) {
		if d, ok := byName[strings.ToLower(name)]; ok {
			days = append(days, d)
		}
	}
	return days
}

func weekdayNames(days []time.Weekday) []string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return names
}
