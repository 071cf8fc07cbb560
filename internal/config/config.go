package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	InputFile string
	SheetName string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	MongoTimeout    time.Duration

	MergeSegmentRows      bool
	DefaultIRILimit       float64
	DefaultRuttingLimit   float64
	DefaultCrackingLimit  float64
	DefaultRavellingLimit float64

	// Segment publishing is disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	PushgatewayURL string

	HTTPAddr        string
	CacheSize       int
	CacheTTL        time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var errs []error
	duration := func(key, def string) time.Duration {
		d, err := parsePositiveDuration(key, def)
		errs = append(errs, err)
		return d
	}
	limit := func(key string, def float64) float64 {
		v, err := parseLimit(key, def)
		errs = append(errs, err)
		return v
	}

	mergeRows, err := parseBool("MERGE_SEGMENT_ROWS", true)
	errs = append(errs, err)
	cacheSize, err := parsePositiveInt("CACHE_SIZE", 256)
	errs = append(errs, err)

	cfg := &Config{
		InputFile: envOrDefault("INPUT_FILE", "nhai1.xlsx"),
		SheetName: os.Getenv("SHEET_NAME"),

		MongoURI:        envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   envOrDefault("MONGO_DATABASE", "test"),
		MongoCollection: envOrDefault("MONGO_COLLECTION", "highwaysegments"),
		MongoTimeout:    duration("MONGO_TIMEOUT", "10s"),

		MergeSegmentRows:      mergeRows,
		DefaultIRILimit:       limit("DEFAULT_IRI_LIMIT", 2400),
		DefaultRuttingLimit:   limit("DEFAULT_RUTTING_LIMIT", 5),
		DefaultCrackingLimit:  limit("DEFAULT_CRACKING_LIMIT", 5),
		DefaultRavellingLimit: limit("DEFAULT_RAVELLING_LIMIT", 5),

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "highway-segments"),

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8000"),
		CacheSize:       cacheSize,
		CacheTTL:        duration("CACHE_TTL", "5m"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", "10s"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.MongoDatabase == "" {
		return nil, errors.New("MONGO_DATABASE is required")
	}
	if cfg.MongoCollection == "" {
		return nil, errors.New("MONGO_COLLECTION is required")
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEnabled reports whether segments are also published to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping blanks.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseLimit(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: must be a non-negative number", key)
	}
	return v, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}
