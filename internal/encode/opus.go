package encode

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gopkg.in/hraban/opus.v2"
)

const (
	opusFrameDuration = 20 * time.Millisecond
	opusGranuleRate   = 48000 // Ogg Opus granule positions always count 48 kHz samples
	opusMaxPacket     = 4000

	// opusPreSkip is the libopus encoder lookahead (2.5 ms plus 4 ms delay
	// compensation) in 48 kHz samples.
	opusPreSkip = 312
)

var opusRates = map[int]bool{8000: true, 12000: true, 16000: true, 24000: true, 48000: true}

// Opus encodes Ogg Opus (RFC 7845) with libopus in 20 ms mono frames.
type Opus struct{}

// Extension implements Encoder.
func (o *Opus) Extension() string { return "opus" }

// Encode implements Encoder. The stream carries opusPreSkip samples of
// encoder delay plus the whole mix; the final page's granule trims the
// zero padding of the last frame and is flagged end-of-stream.
func (o *Opus) Encode(ctx context.Context, samples []float64, sampleRate, bitrate int, tags Tags) ([]byte, error) {
	if err := checkParams(sampleRate, bitrate); err != nil {
		return nil, err
	}
	if !opusRates[sampleRate] {
		return nil, fmt.Errorf("%w: opus needs 8, 12, 16, 24 or 48 kHz, got %d", ErrSampleRate, sampleRate)
	}

	enc, err := opus.NewEncoder(sampleRate, 1, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return nil, fmt.Errorf("opus bitrate %d: %w", bitrate, err)
	}

	ms := int(opusFrameDuration / time.Millisecond)
	frameSize := sampleRate * ms / 1000
	granuleStep := uint64(opusGranuleRate * ms / 1000)

	pcm := ToInt16(samples)
	end := uint64(len(pcm))*opusGranuleRate/uint64(sampleRate) + opusPreSkip
	frames := int((end + granuleStep - 1) / granuleStep)

	var out bytes.Buffer
	ogg := newOggStream(&out, rand.Uint32())
	if err := ogg.WritePage(opusHeadPacket(sampleRate), oggBOS, 0); err != nil {
		return nil, fmt.Errorf("ogg write OpusHead: %w", err)
	}
	if err := ogg.WritePage(opusTagsPacket(tags), 0, 0); err != nil {
		return nil, fmt.Errorf("ogg write OpusTags: %w", err)
	}

	frame := make([]int16, frameSize)
	packet := make([]byte, opusMaxPacket)
	for seq := 0; seq < frames; seq++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := 0
		if i := seq * frameSize; i < len(pcm) {
			n = copy(frame, pcm[i:])
		}
		clear(frame[n:])

		nb, err := enc.Encode(frame, packet)
		if err != nil {
			return nil, fmt.Errorf("opus encode frame %d: %w", seq, err)
		}

		granule := uint64(seq+1) * granuleStep
		var headerType byte
		if seq == frames-1 {
			granule = end
			headerType = oggEOS
		}
		if err := ogg.WritePage(packet[:nb], headerType, granule); err != nil {
			return nil, fmt.Errorf("ogg write frame %d: %w", seq, err)
		}
	}
	return out.Bytes(), nil
}

// opusHeadPacket builds the identification header of RFC 7845 section 5.1
// for a mono stream with channel mapping family 0.
func opusHeadPacket(sampleRate int) []byte {
	b := make([]byte, 19)
	copy(b, "OpusHead")
	b[8] = 1 // version
	b[9] = 1 // channels
	binary.LittleEndian.PutUint16(b[10:], opusPreSkip)
	binary.LittleEndian.PutUint32(b[12:], uint32(sampleRate))
	return b
}

// opusTagsPacket builds the comment header of RFC 7845 section 5.2.
func opusTagsPacket(tags Tags) []byte {
	var b bytes.Buffer
	b.WriteString("OpusTags")
	writeVorbisString(&b, opus.Version())

	pairs := tags.pairs()
	binary.Write(&b, binary.LittleEndian, uint32(len(pairs)))
	for _, kv := range pairs {
		writeVorbisString(&b, strings.ToUpper(kv[0])+"="+kv[1])
	}
	return b.Bytes()
}

func writeVorbisString(b *bytes.Buffer, s string) {
	binary.Write(b, binary.LittleEndian, uint32(len(s)))
	b.WriteString(s)
}
