package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers         []string
	KafkaSourceTopic     string
	KafkaSinkTopic       string
	KafkaGroupID         string
	KafkaMaxMessageBytes int `validate:"gt=0"`
	HTTPAddr             string
	LogLevel             string `validate:"oneof=debug info warn error"`
	LogFormat            string `validate:"oneof=json text"`
	ShutdownTimeout      time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// HSDA engine configuration.
	HailCodes    []int   `validate:"min=1,dive,gt=0"`
	DZDROffset   float64 `validate:"gte=-5,lte=5"`
	CBBThreshold float64 `validate:"gt=0,lte=1"`
	Workers      int     `validate:"gte=0"` // 0 means GOMAXPROCS
	MFTablePath  string

	// Sounding reuse.
	SoundingWindow    time.Duration `validate:"gt=0"`
	SoundingCacheSize int           `validate:"gt=0"`

	OutputCompression string `validate:"oneof=zstd none"`
}

var validate = validator.New()

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first; it never overrides
// variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	hailCodes, err := parseInts("HSDA_HAIL_CODES", "9")
	if err != nil {
		return nil, err
	}
	dzdrOffset, err := parseFloat("HSDA_DZDR_OFFSET", "0")
	if err != nil {
		return nil, err
	}
	cbbThreshold, err := parseFloat("HSDA_CBB_THRESHOLD", "0.5")
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("HSDA_WORKERS", "0")
	if err != nil {
		return nil, err
	}
	maxMessageBytes, err := parseInt("KAFKA_MAX_MESSAGE_BYTES", "10485760")
	if err != nil {
		return nil, err
	}
	soundingCacheSize, err := parseInt("SOUNDING_CACHE_SIZE", "256")
	if err != nil {
		return nil, err
	}
	soundingWindow, err := time.ParseDuration(sharedcfg.EnvOrDefault("SOUNDING_WINDOW", "4h"))
	if err != nil {
		return nil, errors.New("invalid SOUNDING_WINDOW")
	}

	cfg := &Config{
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:     sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "radar-volumes"),
		KafkaSinkTopic:       sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "classified-volumes"),
		KafkaGroupID:         sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-data-hsda"),
		KafkaMaxMessageBytes: maxMessageBytes,
		HTTPAddr:             sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:             strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout:      shutdownTimeout,
		BatchSize:            batchSize,
		BatchFlushInterval:   flushInterval,

		HailCodes:    hailCodes,
		DZDROffset:   dzdrOffset,
		CBBThreshold: cbbThreshold,
		Workers:      workers,
		MFTablePath:  os.Getenv("HSDA_MF_TABLE"),

		SoundingWindow:    soundingWindow,
		SoundingCacheSize: soundingCacheSize,

		OutputCompression: strings.ToLower(sharedcfg.EnvOrDefault("OUTPUT_COMPRESSION", "zstd")),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// CompressOutput reports whether published volumes are zstd-compressed.
func (c *Config) CompressOutput() bool {
	return c.OutputCompression == "zstd"
}

func parseInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(sharedcfg.EnvOrDefault(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(sharedcfg.EnvOrDefault(key, fallback)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

// parseInts reads a comma-separated list of integers.
func parseInts(key, fallback string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(sharedcfg.EnvOrDefault(key, fallback), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not an integer", key, part)
		}
		out = append(out, n)
	}
	return out, nil
}
