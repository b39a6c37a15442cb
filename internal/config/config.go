package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Synthesis
	Duration       time.Duration // length of the mixed track
	SampleRate     int           // Hz
	VolumeDB       float64       // per-tone level relative to full scale
	MinFrequencyHz float64       // audible processing band floor
	MaxFrequencyHz float64       // audible processing band ceiling
	Workers        int           // parallel tone synthesis (1 = sequential)

	// Export
	BitrateKbps int    // compressed output bitrate
	Format      string // output format: mp3, opus, wav
	FFmpegPath  string // binary used by the mp3 encoder
	OutputDir   string // root for per-company output folders

	// Tags embedded in the exported file
	Title   string
	Artist  string
	Comment string

	LogLevel string // error, warn, info, debug, trace
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Duration:       time.Duration(envInt("NEUROAUDIO_DURATION", 30)) * time.Second,
		SampleRate:     envInt("NEUROAUDIO_SAMPLE_RATE", 44100),
		VolumeDB:       envFloat("NEUROAUDIO_VOLUME_DB", -10),
		MinFrequencyHz: envFloat("NEUROAUDIO_MIN_FREQUENCY_HZ", 18000),
		MaxFrequencyHz: envFloat("NEUROAUDIO_MAX_FREQUENCY_HZ", 22000),
		Workers:        envInt("NEUROAUDIO_WORKERS", 1),

		BitrateKbps: envInt("NEUROAUDIO_BITRATE_KBPS", 192),
		Format:      strings.ToLower(envStr("NEUROAUDIO_FORMAT", "mp3")),
		FFmpegPath:  envStr("NEUROAUDIO_FFMPEG", "ffmpeg"),
		OutputDir:   envStr("NEUROAUDIO_OUTPUT_DIR", "output"),

		Title:   envStr("NEUROAUDIO_TITLE", "NeuroAudio"),
		Artist:  envStr("NEUROAUDIO_ARTIST", "NeuroAudio System"),
		Comment: envStr("NEUROAUDIO_COMMENT", "Generated automatically"),

		LogLevel: strings.ToLower(envStr("NEUROAUDIO_LOG_LEVEL", "info")),
	}
}

// Validate reports the first setting that cannot produce a track.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.MinFrequencyHz > c.MaxFrequencyHz {
		return fmt.Errorf("frequency band inverted: %g > %g", c.MinFrequencyHz, c.MaxFrequencyHz)
	}
	if c.BitrateKbps <= 0 {
		return fmt.Errorf("bitrate must be positive, got %d", c.BitrateKbps)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

// Bitrate returns the export bitrate in bits per second.
func (c Config) Bitrate() int {
	return c.BitrateKbps * 1000
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
