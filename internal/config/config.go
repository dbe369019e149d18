// Package config handles application configuration management.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Audio    AudioConfig
	Storage  StorageConfig
	Cache    CacheConfig
	TTS      TTSConfig
	Preview  PreviewConfig
	Log      LogConfig
	// Environment is "development" or "production"
	Environment string
}

// ServerConfig holds HTTP server and CORS configuration.
type ServerConfig struct {
	Address string
	// AllowedOrigins is a comma-separated list of allowed origins for CORS
	AllowedOrigins string
	// MaxUploadBytes limits the size of multipart audio uploads
	MaxUploadBytes int64
}

// DatabaseConfig holds MySQL database connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// AudioConfig holds mixing and file handling configuration.
type AudioConfig struct {
	// SampleRate is the render rate of exported mixes in Hz.
	SampleRate int
	// FetchTimeout bounds remote asset downloads.
	FetchTimeout time.Duration
	// MaxFetchBytes bounds remote asset downloads in size.
	MaxFetchBytes int64
	// FetchAllowedHosts limits remote downloads to these hosts when set.
	FetchAllowedHosts []string
	// FetchAllowPrivate lets any host resolve to loopback, private or link-local addresses.
	FetchAllowPrivate bool
	AssetsPath        string
	OutputPath        string
	// MixRetention is how long exported mix files are kept.
	MixRetention time.Duration
	// MixMaxSeconds bounds the length of a rendered mix.
	MixMaxSeconds float64
}

// StorageConfig selects where exported mixes are written.
type StorageConfig struct {
	// Driver is "local" or "minio"
	Driver         string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
}

// CacheConfig selects the rendered mix cache backend.
type CacheConfig struct {
	// Driver is "memory", "redis" or "none"
	Driver        string
	MaxEntries    int
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// TTSConfig holds the speech synthesis vendor settings.
type TTSConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	RequestTimeout time.Duration
	// MaxChunkChars is the longest text sent in a single synthesis call.
	MaxChunkChars int
}

// PreviewConfig holds the server-side preview output settings.
type PreviewConfig struct {
	// Command is an external player reading raw s16le PCM on stdin; empty discards audio.
	Command string
	Args    []string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level    string
	FilePath string
}

// Load reads configuration from environment variables and creates required directories.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Address:        getEnv("MIXDOWN_SERVER_ADDRESS", ":8080"),
			AllowedOrigins: getEnv("MIXDOWN_ALLOWED_ORIGINS", ""),
			MaxUploadBytes: getEnvInt64("MIXDOWN_MAX_UPLOAD_BYTES", 100<<20),
		},
		Database: DatabaseConfig{
			Host:     getEnv("MIXDOWN_DB_HOST", "localhost"),
			Port:     getEnvInt("MIXDOWN_DB_PORT", 3306),
			User:     getEnv("MIXDOWN_DB_USER", "mixdown"),
			Password: getEnv("MIXDOWN_DB_PASSWORD", "mixdown"),
			Database: getEnv("MIXDOWN_DB_NAME", "mixdown"),
		},
		Audio: AudioConfig{
			SampleRate:        getEnvInt("MIXDOWN_SAMPLE_RATE", 44100),
			FetchTimeout:      getEnvDuration("MIXDOWN_FETCH_TIMEOUT", 30*time.Second),
			MaxFetchBytes:     getEnvInt64("MIXDOWN_MAX_FETCH_BYTES", 200<<20),
			FetchAllowedHosts: splitList(getEnv("MIXDOWN_FETCH_ALLOWED_HOSTS", "")),
			FetchAllowPrivate: getEnvBool("MIXDOWN_FETCH_ALLOW_PRIVATE", false),
			AssetsPath:        getEnv("MIXDOWN_ASSETS_PATH", "./audio/assets"),
			OutputPath:        getEnv("MIXDOWN_OUTPUT_PATH", "./audio/output"),
			MixRetention:      getEnvDuration("MIXDOWN_MIX_RETENTION", 7*24*time.Hour),
			MixMaxSeconds:     getEnvFloat("MIXDOWN_MAX_MIX_SECONDS", 3600),
		},
		Storage: StorageConfig{
			Driver:         getEnv("MIXDOWN_STORAGE_DRIVER", "local"),
			MinioEndpoint:  getEnv("MIXDOWN_MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey: getEnv("MIXDOWN_MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getEnv("MIXDOWN_MINIO_SECRET_KEY", ""),
			MinioBucket:    getEnv("MIXDOWN_MINIO_BUCKET", "mixdown"),
			MinioRegion:    getEnv("MIXDOWN_MINIO_REGION", "us-east-1"),
			MinioUseSSL:    getEnvBool("MIXDOWN_MINIO_USE_SSL", false),
		},
		Cache: CacheConfig{
			Driver:        getEnv("MIXDOWN_CACHE_DRIVER", "memory"),
			MaxEntries:    getEnvInt("MIXDOWN_CACHE_MAX_ENTRIES", 64),
			TTL:           getEnvDuration("MIXDOWN_CACHE_TTL", time.Hour),
			RedisAddr:     getEnv("MIXDOWN_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("MIXDOWN_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("MIXDOWN_REDIS_DB", 0),
		},
		TTS: TTSConfig{
			APIKey:         getEnv("MIXDOWN_TTS_API_KEY", ""),
			Model:          getEnv("MIXDOWN_TTS_MODEL", "eleven_multilingual_v2"),
			BaseURL:        getEnv("MIXDOWN_TTS_BASE_URL", "https://api.elevenlabs.io"),
			RequestTimeout: getEnvDuration("MIXDOWN_TTS_TIMEOUT", 60*time.Second),
			MaxChunkChars:  getEnvInt("MIXDOWN_TTS_MAX_CHUNK_CHARS", 2500),
		},
		Preview: PreviewConfig{
			Command: getEnv("MIXDOWN_PREVIEW_COMMAND", ""),
			Args:    strings.Fields(getEnv("MIXDOWN_PREVIEW_ARGS", "")),
		},
		Log: LogConfig{
			Level:    getEnv("MIXDOWN_LOG_LEVEL", "info"),
			FilePath: getEnv("MIXDOWN_LOG_FILE", ""),
		},
		Environment: getEnv("MIXDOWN_ENV", "development"),
	}

	if cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", cfg.Audio.SampleRate)
	}
	if !(cfg.Audio.MixMaxSeconds > 0) || math.IsInf(cfg.Audio.MixMaxSeconds, 1) {
		return nil, fmt.Errorf("invalid maximum mix length %v", cfg.Audio.MixMaxSeconds)
	}
	if !Environment(cfg.Environment).IsValid() {
		return nil, fmt.Errorf("invalid environment %q", cfg.Environment)
	}
	if !StorageDriver(cfg.Storage.Driver).IsValid() {
		return nil, fmt.Errorf("invalid storage driver %q", cfg.Storage.Driver)
	}
	if !CacheDriver(cfg.Cache.Driver).IsValid() {
		return nil, fmt.Errorf("invalid cache driver %q", cfg.Cache.Driver)
	}

	// Create directories if they don't exist
	dirs := []string{
		cfg.Audio.AssetsPath,
		cfg.Audio.OutputPath,
	}

	for _, dir := range dirs {
		// #nosec G301 - audio directories must be readable by the web server
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return Environment(c.Environment).IsProduction()
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated list, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
