package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingHost      = errors.New("FTP_HOST must be set")
	ErrInvalidPort      = errors.New("FTP_PORT must be between 1 and 65535")
	ErrInvalidChunkSize = errors.New("TRANSFER_CHUNK_SIZE must be greater than 0")
	ErrInvalidRateLimit = errors.New("TRANSFER_RATE_LIMIT must not be negative")
)

const (
	DefaultPort      = 21
	DefaultUser      = "anonymous"
	DefaultTimeout   = 30 * time.Second
	DefaultChunkSize = 32 * 1024
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Timeout     time.Duration
	DisableEPSV bool

	// ChunkSize is the copy-loop read size in bytes.
	ChunkSize int
	// RateLimit caps transfer throughput in bytes per second; 0 disables it.
	RateLimit int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("FTP_HOST", "")
	v.SetDefault("FTP_PORT", DefaultPort)
	v.SetDefault("FTP_USER", DefaultUser)
	v.SetDefault("FTP_PASSWORD", "")
	v.SetDefault("FTP_TIMEOUT", DefaultTimeout)
	v.SetDefault("FTP_DISABLE_EPSV", false)
	v.SetDefault("TRANSFER_CHUNK_SIZE", DefaultChunkSize)
	v.SetDefault("TRANSFER_RATE_LIMIT", 0)

	config := &Config{
		Host:        v.GetString("FTP_HOST"),
		Port:        v.GetInt("FTP_PORT"),
		Username:    v.GetString("FTP_USER"),
		Password:    v.GetString("FTP_PASSWORD"),
		Timeout:     v.GetDuration("FTP_TIMEOUT"),
		DisableEPSV: v.GetBool("FTP_DISABLE_EPSV"),
		ChunkSize:   v.GetInt("TRANSFER_CHUNK_SIZE"),
		RateLimit:   v.GetInt64("TRANSFER_RATE_LIMIT"),
	}

	return config, nil
}

// Validate checks the values a session and the transfer engine depend on.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrMissingHost
	}
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}
