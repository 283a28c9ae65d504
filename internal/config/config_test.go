package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "radar-volumes", cfg.KafkaSourceTopic)
	assert.Equal(t, "classified-volumes", cfg.KafkaSinkTopic)
	assert.Equal(t, "storm-data-hsda", cfg.KafkaGroupID)
	assert.Equal(t, 10485760, cfg.KafkaMaxMessageBytes)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.Equal(t, []int{9}, cfg.HailCodes)
	assert.Zero(t, cfg.DZDROffset)
	assert.InDelta(t, 0.5, cfg.CBBThreshold, 1e-12)
	assert.Zero(t, cfg.Workers)
	assert.Empty(t, cfg.MFTablePath)
	assert.Equal(t, 4*time.Hour, cfg.SoundingWindow)
	assert.Equal(t, 256, cfg.SoundingCacheSize)
	assert.Equal(t, "zstd", cfg.OutputCompression)
	assert.True(t, cfg.CompressOutput())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("KAFKA_MAX_MESSAGE_BYTES", "2048")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("HSDA_HAIL_CODES", "8, 9")
	t.Setenv("HSDA_DZDR_OFFSET", "-0.25")
	t.Setenv("HSDA_CBB_THRESHOLD", "0.4")
	t.Setenv("HSDA_WORKERS", "6")
	t.Setenv("HSDA_MF_TABLE", "/etc/hsda/table.json")
	t.Setenv("SOUNDING_WINDOW", "2h")
	t.Setenv("SOUNDING_CACHE_SIZE", "32")
	t.Setenv("OUTPUT_COMPRESSION", "none")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, 2048, cfg.KafkaMaxMessageBytes)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, []int{8, 9}, cfg.HailCodes)
	assert.InDelta(t, -0.25, cfg.DZDROffset, 1e-12)
	assert.InDelta(t, 0.4, cfg.CBBThreshold, 1e-12)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "/etc/hsda/table.json", cfg.MFTablePath)
	assert.Equal(t, 2*time.Hour, cfg.SoundingWindow)
	assert.Equal(t, 32, cfg.SoundingCacheSize)
	assert.False(t, cfg.CompressOutput())
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_BatchSizeTooLarge(t *testing.T) {
	t.Setenv("BATCH_SIZE", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"HSDA_HAIL_CODES", "9,hail", "HSDA_HAIL_CODES"},
		{"HSDA_HAIL_CODES", ",", "HailCodes"},
		{"HSDA_HAIL_CODES", "0", "HailCodes"},
		{"HSDA_DZDR_OFFSET", "abc", "HSDA_DZDR_OFFSET"},
		{"HSDA_DZDR_OFFSET", "9", "DZDROffset"},
		{"HSDA_CBB_THRESHOLD", "0", "CBBThreshold"},
		{"HSDA_CBB_THRESHOLD", "NaN", "CBBThreshold"},
		{"HSDA_WORKERS", "-1", "Workers"},
		{"HSDA_WORKERS", "many", "HSDA_WORKERS"},
		{"SOUNDING_WINDOW", "soon", "SOUNDING_WINDOW"},
		{"SOUNDING_WINDOW", "0s", "SoundingWindow"},
		{"SOUNDING_CACHE_SIZE", "0", "SoundingCacheSize"},
		{"KAFKA_MAX_MESSAGE_BYTES", "0", "KafkaMaxMessageBytes"},
		{"OUTPUT_COMPRESSION", "gzip", "OutputCompression"},
		{"LOG_FORMAT", "xml", "LogFormat"},
		{"LOG_LEVEL", "verbose", "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
