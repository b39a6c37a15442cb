package encode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg encodes MP3 by piping 16-bit mono PCM through ffmpeg/libmp3lame.
type FFmpeg struct {
	Path string // ffmpeg binary; "ffmpeg" from PATH when empty
}

// Extension implements Encoder.
func (f *FFmpeg) Extension() string { return "mp3" }

// Encode implements Encoder.
func (f *FFmpeg) Encode(ctx context.Context, samples []float64, sampleRate, bitrate int, tags Tags) ([]byte, error) {
	if err := checkParams(sampleRate, bitrate); err != nil {
		return nil, err
	}

	bin := f.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	// FFmpeg: PCM stdin -> MP3 stdout
	args := []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", bitrate/1000),
		"-id3v2_version", "3",
	}
	for _, kv := range tags.pairs() {
		args = append(args, "-metadata", kv[0]+"="+kv[1])
	}
	args = append(args,
		"-f", "mp3",
		"-loglevel", "error",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(SamplesToBytes(ToInt16(samples)))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg encode: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg encode: %w", err)
	}
	return out, nil
}
