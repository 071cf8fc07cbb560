package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nhai1.xlsx", cfg.InputFile)
	assert.Empty(t, cfg.SheetName)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "test", cfg.MongoDatabase)
	assert.Equal(t, "highwaysegments", cfg.MongoCollection)
	assert.Equal(t, 10*time.Second, cfg.MongoTimeout)
	assert.True(t, cfg.MergeSegmentRows)
	assert.Equal(t, 2400.0, cfg.DefaultIRILimit)
	assert.Equal(t, 5.0, cfg.DefaultRuttingLimit)
	assert.Equal(t, 5.0, cfg.DefaultCrackingLimit)
	assert.Equal(t, 5.0, cfg.DefaultRavellingLimit)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishEnabled())
	assert.Equal(t, "highway-segments", cfg.KafkaTopic)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("INPUT_FILE", "surveys/nh48.xlsx")
	t.Setenv("SHEET_NAME", "Survey")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DATABASE", "roads")
	t.Setenv("MONGO_COLLECTION", "segments")
	t.Setenv("MONGO_TIMEOUT", "3s")
	t.Setenv("MERGE_SEGMENT_ROWS", "false")
	t.Setenv("DEFAULT_IRI_LIMIT", "3000")
	t.Setenv("DEFAULT_RUTTING_LIMIT", "7.5")
	t.Setenv("DEFAULT_CRACKING_LIMIT", "10")
	t.Setenv("DEFAULT_RAVELLING_LIMIT", "0")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("KAFKA_TOPIC", "segments")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CACHE_SIZE", "32")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "surveys/nh48.xlsx", cfg.InputFile)
	assert.Equal(t, "Survey", cfg.SheetName)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "roads", cfg.MongoDatabase)
	assert.Equal(t, "segments", cfg.MongoCollection)
	assert.Equal(t, 3*time.Second, cfg.MongoTimeout)
	assert.False(t, cfg.MergeSegmentRows)
	assert.Equal(t, 3000.0, cfg.DefaultIRILimit)
	assert.Equal(t, 7.5, cfg.DefaultRuttingLimit)
	assert.Equal(t, 10.0, cfg.DefaultCrackingLimit)
	assert.Equal(t, 0.0, cfg.DefaultRavellingLimit)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, "segments", cfg.KafkaTopic)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"MONGO_TIMEOUT", "0s"},
		{"CACHE_TTL", "soon"},
		{"CACHE_SIZE", "0"},
		{"CACHE_SIZE", "many"},
		{"MERGE_SEGMENT_ROWS", "sometimes"},
		{"DEFAULT_IRI_LIMIT", "high"},
		{"DEFAULT_RUTTING_LIMIT", "-5"},
		{"DEFAULT_CRACKING_LIMIT", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ReportsEveryInvalidValue(t *testing.T) {
	t.Setenv("MONGO_TIMEOUT", "bad")
	t.Setenv("CACHE_SIZE", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_TIMEOUT")
	assert.Contains(t, err.Error(), "CACHE_SIZE")
}

func TestParseBrokers(t *testing.T) {
	assert.Nil(t, parseBrokers(""))
	assert.Nil(t, parseBrokers(" , "))
	assert.Equal(t, []string{"a:9092"}, parseBrokers("a:9092"))
}
