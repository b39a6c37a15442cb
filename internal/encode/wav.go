package encode

import (
	"context"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WAV writes 16-bit mono PCM with an INFO list for the tags.
// The bitrate argument is ignored.
type WAV struct{}

// Extension implements Encoder.
func (w *WAV) Extension() string { return "wav" }

// Encode implements Encoder.
func (w *WAV) Encode(ctx context.Context, samples []float64, sampleRate, bitrate int, tags Tags) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrSampleRate, sampleRate)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// wav.Encoder seeks back to patch chunk sizes, so it needs a file.
	f, err := os.CreateTemp("", "neuroaudio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	pcm := ToInt16(samples)
	data := make([]int, len(pcm))
	for i, s := range pcm {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, 1, 1)
	enc.Metadata = &wav.Metadata{
		Title:    tags.Title,
		Artist:   tags.Artist,
		Comments: tags.Comment,
		Software: "neuroaudio",
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav close: %w", err)
	}

	out, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, fmt.Errorf("read temp wav: %w", err)
	}
	return out, nil
}
