// Package export writes a finished mix to disk and checks the result.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/encode"
	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/synth"
	"github.com/pion/logging"
)

var (
	// ErrEmptyAudio means there is nothing to export: no samples or no tones.
	ErrEmptyAudio = errors.New("export: no audio data to export")

	// ErrEncode wraps any failure reported by the encoder.
	ErrEncode = errors.New("export: encoding failed")

	// ErrExportVerification means the encoder ran but the file is missing or empty.
	ErrExportVerification = errors.New("export: artifact verification failed")
)

// Artifact describes a written file.
type Artifact struct {
	Path string
	Size int64
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter's logger.
func WithLogger(l logging.LeveledLogger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// Exporter encodes tracks with one Encoder.
type Exporter struct {
	enc encode.Encoder
	log logging.LeveledLogger
}

// New returns an Exporter using enc.
func New(enc encode.Encoder, opts ...Option) *Exporter {
	e := &Exporter{enc: enc}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.log == nil {
		e.log = logging.NewDefaultLoggerFactory().NewLogger("export")
	}
	return e
}

// Extension returns the file extension produced by the encoder.
func (e *Exporter) Extension() string {
	return e.enc.Extension()
}

// Export encodes track at bitrate (bits/s) with tags into dest, creating the
// parent directory if needed. The written file is checked afterwards: a
// missing or zero-length file is an error even if the encoder reported none,
// and an empty file is removed.
func (e *Exporter) Export(ctx context.Context, track *synth.Track, dest string, bitrate int, tags encode.Tags) (Artifact, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create output dir: %w", err)
	}
	if track == nil || len(track.Samples) == 0 || track.Tones == 0 {
		return Artifact{}, ErrEmptyAudio
	}

	e.log.Infof("Exporting audio to: %s", dest)

	data, err := e.enc.Encode(ctx, track.Samples, track.SampleRate, bitrate, tags)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write %s: %w", dest, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %s: %w", ErrExportVerification, dest, err)
	}
	if info.Size() == 0 {
		os.Remove(dest)
		return Artifact{}, fmt.Errorf("%w: %s is empty", ErrExportVerification, dest)
	}

	e.log.Infof("Audio saved successfully: %d bytes", info.Size())
	return Artifact{Path: dest, Size: info.Size()}, nil
}
