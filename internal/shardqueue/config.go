package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config groups all tunables. Values are taken from environment variables with
// the prefix "SQ_". Example: SQ_SHARDS=8 SQ_QUEUE_SIZE=256 .
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// ErrorHandler is called synchronously after a Job finally fails.
	ErrorHandler func(error) `envconfig:"-"`

	// Logger receives lifecycle and panic events. Zero value discards.
	Logger zerolog.Logger `envconfig:"-"`

	// MaxAttempts of 1 disables retries. Timeline writes use 1 so a failed
	// save surfaces to the caller instead of silently re-posting.
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS"    default:"8"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF"    default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL"    default:"20s"`
}

// LoadConfig populates Config from environment variables (prefix SQ_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("SQ", &c)
}

func (c Config) withDefaults() Config {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 20 * time.Second
	}
	return c
}
