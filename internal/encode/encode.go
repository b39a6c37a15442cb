// Package encode turns a mono float track into a file format.
//
// Three backends exist: MP3 through an ffmpeg subprocess (the default),
// Ogg Opus through libopus, and uncompressed WAV. All of them clip the
// float mix to 16-bit PCM on the way in.
package encode

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned by ForFormat for unsupported names.
	ErrUnknownFormat = errors.New("encode: unknown format")

	// ErrSampleRate means the backend cannot encode at the requested rate.
	ErrSampleRate = errors.New("encode: unsupported sample rate")
)

// Encoder converts mono samples to the bytes of a complete file.
type Encoder interface {
	Encode(ctx context.Context, samples []float64, sampleRate, bitrate int, tags Tags) ([]byte, error)
	Extension() string
}

// Tags are the descriptive fields embedded in the output file.
type Tags struct {
	Title   string
	Artist  string
	Comment string
}

// DefaultTags returns the tags written when nothing else is configured.
func DefaultTags() Tags {
	return Tags{
		Title:   "NeuroAudio",
		Artist:  "NeuroAudio System",
		Comment: "Generated automatically",
	}
}

// pairs returns the non-empty tags as key/value pairs in a fixed order.
func (t Tags) pairs() [][2]string {
	var out [][2]string
	for _, kv := range [][2]string{{"title", t.Title}, {"artist", t.Artist}, {"comment", t.Comment}} {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}

// ForFormat returns the encoder for name (mp3, opus or wav).
// ffmpegPath is only used by mp3.
func ForFormat(name, ffmpegPath string) (Encoder, error) {
	switch name {
	case "mp3", "":
		return &FFmpeg{Path: ffmpegPath}, nil
	case "opus", "ogg":
		return &Opus{}, nil
	case "wav":
		return &WAV{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

func checkParams(sampleRate, bitrate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleRate, sampleRate)
	}
	if bitrate <= 0 {
		return fmt.Errorf("bitrate must be > 0: %d", bitrate)
	}
	return nil
}
