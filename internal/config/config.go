// SPDX-License-Identifier: EPL-2.0

// Package config loads the audplay runtime settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	OutputSpeaker = "speaker"
	OutputNull    = "null"

	FormatsDefault  = "default"
	FormatsExtended = "extended"
)

// Config holds all runtime configuration, loaded from environment
// variables. Command line flags are applied on top by the caller.
type Config struct {
	Output string // speaker or null

	// Hardware format of the speaker. Tracks in other formats are
	// converted.
	DeviceRate     int
	DeviceChannels int
	DeviceBuffer   time.Duration // oto context latency

	// DrainTimeout bounds the wait for queued audio after a track ends.
	// The speaker queues about three seconds.
	DrainTimeout time.Duration

	BusBuffer     int           // blocks per bus subscriber
	MeterInterval time.Duration // zero disables the level meter

	LogLevel string
	Formats  string // default or extended
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Output:         envStr("AUDPLAY_OUTPUT", OutputSpeaker),
		DeviceRate:     envInt("AUDPLAY_DEVICE_RATE", 48000),
		DeviceChannels: envInt("AUDPLAY_DEVICE_CHANNELS", 2),
		DeviceBuffer:   envDuration("AUDPLAY_DEVICE_BUFFER", 100*time.Millisecond),
		DrainTimeout:   envDuration("AUDPLAY_DRAIN_TIMEOUT", 3*time.Second),
		BusBuffer:      envInt("AUDPLAY_BUS_BUFFER", 256),
		MeterInterval:  envDuration("AUDPLAY_METER_INTERVAL", 500*time.Millisecond),
		LogLevel:       envStr("AUDPLAY_LOG_LEVEL", "info"),
		Formats:        envStr("AUDPLAY_FORMATS", FormatsExtended),
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.Output {
	case OutputSpeaker, OutputNull:
	default:
		return fmt.Errorf("%w: output %q", ErrInvalid, c.Output)
	}

	switch c.Formats {
	case FormatsDefault, FormatsExtended:
	default:
		return fmt.Errorf("%w: formats %q", ErrInvalid, c.Formats)
	}

	if c.DeviceRate <= 0 {
		return fmt.Errorf("%w: device rate %d", ErrInvalid, c.DeviceRate)
	}
	if c.DeviceChannels < 1 || c.DeviceChannels > 2 {
		return fmt.Errorf("%w: device channels %d", ErrInvalid, c.DeviceChannels)
	}
	if c.DeviceBuffer <= 0 {
		return fmt.Errorf("%w: device buffer %s", ErrInvalid, c.DeviceBuffer)
	}
	if c.DrainTimeout < 0 || c.MeterInterval < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}

	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.LogLevel)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}

	return fallback
}
