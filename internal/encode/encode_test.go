package encode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os/exec"
	"strings"
	"testing"

	"github.com/go-audio/wav"
)

func sine(freq float64, sampleRate, n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// --- PCM ---

func TestToInt16Clips(t *testing.T) {
	in := []float64{0, 0.5, -0.5, 1, -1, 1.7, -3.2, math.NaN()}
	want := []int16{0, 16384, -16384, 32767, -32767, 32767, -32768, 0}
	got := ToInt16(in)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToInt16(%v) = %d, want %d", in[i], got[i], want[i])
		}
	}
}

func TestSamplesToBytes(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 256}
	buf := SamplesToBytes(samples)
	if len(buf) != len(samples)*2 {
		t.Fatalf("SamplesToBytes length = %d, want %d", len(buf), len(samples)*2)
	}

	// 256 = 0x0100 -> bytes [0x00, 0x01]
	idx := 5 * 2
	if buf[idx] != 0x00 || buf[idx+1] != 0x01 {
		t.Errorf("Sample 256 encoded as [%02x, %02x], want [00, 01]", buf[idx], buf[idx+1])
	}
	for i, v := range samples {
		if got := int16(binary.LittleEndian.Uint16(buf[i*2:])); got != v {
			t.Errorf("sample[%d] = %d, want %d", i, got, v)
		}
	}
}

// --- ForFormat ---

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"mp3", "mp3"},
		{"", "mp3"},
		{"opus", "opus"},
		{"ogg", "opus"},
		{"wav", "wav"},
	}
	for _, tt := range tests {
		enc, err := ForFormat(tt.name, "ffmpeg")
		if err != nil {
			t.Fatalf("ForFormat(%q) error: %v", tt.name, err)
		}
		if enc.Extension() != tt.ext {
			t.Errorf("ForFormat(%q).Extension() = %q, want %q", tt.name, enc.Extension(), tt.ext)
		}
	}
	if _, err := ForFormat("flac", ""); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ForFormat(flac) error = %v, want ErrUnknownFormat", err)
	}
}

func TestTagPairsSkipEmpty(t *testing.T) {
	got := Tags{Title: "x", Comment: "y"}.pairs()
	if len(got) != 2 || got[0] != [2]string{"title", "x"} || got[1] != [2]string{"comment", "y"} {
		t.Errorf("pairs = %v", got)
	}
}

// --- WAV ---

func TestWAVRoundTrip(t *testing.T) {
	samples := sine(1000, 44100, 4410, 0.5)
	data, err := (&WAV{}).Encode(context.Background(), samples, 44100, 192000, DefaultTags())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty wav output")
	}

	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		t.Fatal("decoder rejects output")
	}
	d.ReadMetadata()
	if err := d.Err(); err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if d.Metadata == nil {
		t.Fatal("no metadata decoded")
	}
	if d.Metadata.Title != "NeuroAudio" || d.Metadata.Artist != "NeuroAudio System" {
		t.Errorf("metadata = %+v", d.Metadata)
	}

	if err := d.Rewind(); err != nil {
		t.Fatal(err)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if buf.Format.SampleRate != 44100 || buf.Format.NumChannels != 1 {
		t.Errorf("format = %+v, want 44100 Hz mono", buf.Format)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	want := ToInt16(samples)
	for i := range want {
		if buf.Data[i] != int(want[i]) {
			t.Fatalf("sample[%d] = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestWAVRejectsBadRate(t *testing.T) {
	_, err := (&WAV{}).Encode(context.Background(), []float64{0}, 0, 0, Tags{})
	if !errors.Is(err, ErrSampleRate) {
		t.Errorf("error = %v, want ErrSampleRate", err)
	}
}

// --- Opus ---

type oggPageInfo struct {
	headerType byte
	granule    uint64
	serial     uint32
	seq        uint32
	payload    []byte
	raw        []byte
}

func parseOggPages(t *testing.T, data []byte) []oggPageInfo {
	t.Helper()
	var pages []oggPageInfo
	for off := 0; off < len(data); {
		if len(data)-off < oggHeaderSize || string(data[off:off+4]) != "OggS" {
			t.Fatalf("bad page at offset %d", off)
		}
		nSeg := int(data[off+26])
		size := 0
		for _, l := range data[off+oggHeaderSize : off+oggHeaderSize+nSeg] {
			size += int(l)
		}
		start := off + oggHeaderSize + nSeg
		end := start + size
		pages = append(pages, oggPageInfo{
			headerType: data[off+5],
			granule:    binary.LittleEndian.Uint64(data[off+6:]),
			serial:     binary.LittleEndian.Uint32(data[off+14:]),
			seq:        binary.LittleEndian.Uint32(data[off+18:]),
			payload:    data[start:end],
			raw:        data[off:end],
		})
		off = end
	}
	return pages
}

func TestOpusOggStructure(t *testing.T) {
	samples := sine(1000, 48000, 48000, 0.3) // 1 s
	data, err := (&Opus{}).Encode(context.Background(), samples, 48000, 64000, DefaultTags())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	pages := parseOggPages(t, data)
	// 48000 + 312 pre-skip samples need 51 frames of 960.
	if len(pages) != 2+51 {
		t.Fatalf("pages = %d, want 53 (2 headers + 51 audio)", len(pages))
	}

	head := pages[0]
	if !bytes.HasPrefix(head.payload, []byte("OpusHead")) || head.headerType != oggBOS {
		t.Fatalf("page 0: header type %#x payload %q, want BOS OpusHead", head.headerType, head.payload)
	}
	if pre := binary.LittleEndian.Uint16(head.payload[10:]); pre != opusPreSkip {
		t.Errorf("pre-skip = %d, want %d", pre, opusPreSkip)
	}
	if rate := binary.LittleEndian.Uint32(head.payload[12:]); rate != 48000 {
		t.Errorf("input rate = %d, want 48000", rate)
	}

	if !bytes.HasPrefix(pages[1].payload, []byte("OpusTags")) {
		t.Error("page 1 is not OpusTags")
	}
	for _, want := range []string{"TITLE=NeuroAudio", "ARTIST=NeuroAudio System", "COMMENT=Generated automatically"} {
		if !bytes.Contains(pages[1].payload, []byte(want)) {
			t.Errorf("OpusTags missing %q", want)
		}
	}
	if pages[1].granule != 0 {
		t.Errorf("tag page granule = %d, want 0", pages[1].granule)
	}

	for i, p := range pages {
		if p.seq != uint32(i) || p.serial != head.serial {
			t.Errorf("page %d: seq=%d serial=%#x", i, p.seq, p.serial)
		}
		stored := binary.LittleEndian.Uint32(p.raw[22:])
		if got := oggChecksum(p.raw); got != stored {
			t.Errorf("page %d checksum = %08x, stored %08x", i, got, stored)
		}
		if i < len(pages)-1 && p.headerType&oggEOS != 0 {
			t.Errorf("page %d has EOS before the last page", i)
		}
	}

	if pages[2].granule != 960 {
		t.Errorf("first audio granule = %d, want 960", pages[2].granule)
	}
	for i := 3; i < len(pages); i++ {
		if pages[i].granule <= pages[i-1].granule {
			t.Errorf("granule not increasing at page %d: %d <= %d", i, pages[i].granule, pages[i-1].granule)
		}
	}
	last := pages[len(pages)-1]
	if last.headerType&oggEOS == 0 {
		t.Errorf("last page header type = %#x, want EOS", last.headerType)
	}
	if playable := last.granule - opusPreSkip; playable != 48000 {
		t.Errorf("playable samples = %d, want 48000", playable)
	}
}

func TestOpusKeepsFullDuration(t *testing.T) {
	for _, rate := range []int{48000, 16000} {
		n := rate * 30 // 30 s mix
		data, err := (&Opus{}).Encode(context.Background(), make([]float64, n), rate, 64000, Tags{})
		if err != nil {
			t.Fatalf("rate %d: Encode: %v", rate, err)
		}
		pages := parseOggPages(t, data)
		last := pages[len(pages)-1]
		if last.granule != 30*48000+opusPreSkip {
			t.Errorf("rate %d: final granule = %d, want %d", rate, last.granule, 30*48000+opusPreSkip)
		}
		if last.headerType&oggEOS == 0 {
			t.Errorf("rate %d: final page is not EOS", rate)
		}
		if audio := uint64(len(pages)-2) * 960; audio < last.granule {
			t.Errorf("rate %d: %d encoded samples cannot cover granule %d", rate, audio, last.granule)
		}
	}
}

func TestOpusHeadPacket(t *testing.T) {
	b := opusHeadPacket(16000)
	if len(b) != 19 || string(b[:8]) != "OpusHead" || b[8] != 1 || b[9] != 1 || b[18] != 0 {
		t.Errorf("OpusHead = %v", b)
	}
	if rate := binary.LittleEndian.Uint32(b[12:]); rate != 16000 {
		t.Errorf("input rate = %d, want 16000", rate)
	}
}

func TestOpusTagsPacketLayout(t *testing.T) {
	pkt := opusTagsPacket(Tags{Title: "T"})
	if !bytes.HasPrefix(pkt, []byte("OpusTags")) {
		t.Fatal("missing magic")
	}
	vendorLen := binary.LittleEndian.Uint32(pkt[8:])
	off := 12 + int(vendorLen)
	if n := binary.LittleEndian.Uint32(pkt[off:]); n != 1 {
		t.Fatalf("comment count = %d, want 1", n)
	}
	off += 4
	l := binary.LittleEndian.Uint32(pkt[off:])
	if got := string(pkt[off+4 : off+4+int(l)]); got != "TITLE=T" {
		t.Errorf("comment = %q, want TITLE=T", got)
	}
}

func TestOggPageLacing(t *testing.T) {
	for _, size := range []int{0, 1, 254, 255, 256, 510, 1000} {
		page := oggPage(make([]byte, size), 0, 7, 1, 2)
		nSeg := int(page[26])
		total := 0
		for _, l := range page[oggHeaderSize : oggHeaderSize+nSeg] {
			total += int(l)
		}
		if total != size {
			t.Errorf("size %d: lacing sums to %d", size, total)
		}
		if len(page) != oggHeaderSize+nSeg+size {
			t.Errorf("size %d: page length %d", size, len(page))
		}
	}
}

func TestOpusRejectsCDRate(t *testing.T) {
	_, err := (&Opus{}).Encode(context.Background(), []float64{0}, 44100, 192000, Tags{})
	if !errors.Is(err, ErrSampleRate) {
		t.Errorf("error = %v, want ErrSampleRate", err)
	}
}

func TestOpusCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Opus{}).Encode(ctx, sine(440, 48000, 4800, 0.3), 48000, 64000, Tags{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// --- FFmpeg ---

func TestFFmpegMP3(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	data, err := (&FFmpeg{}).Encode(context.Background(), sine(20000, 44100, 44100, 0.3), 44100, 192000, DefaultTags())
	if err != nil && strings.Contains(err.Error(), "libmp3lame") {
		t.Skipf("ffmpeg built without libmp3lame: %v", err)
	}
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty mp3 output")
	}
	if !bytes.HasPrefix(data, []byte("ID3")) {
		t.Errorf("mp3 output does not start with an ID3 tag")
	}
	if !bytes.Contains(data, []byte("NeuroAudio System")) {
		t.Errorf("artist tag not embedded")
	}
}

func TestFFmpegMissingBinary(t *testing.T) {
	_, err := (&FFmpeg{Path: "/nonexistent/ffmpeg"}).Encode(context.Background(), []float64{0, 0}, 44100, 192000, Tags{})
	if err == nil {
		t.Error("expected error for missing ffmpeg binary")
	}
}

func TestFFmpegRejectsBadParams(t *testing.T) {
	if _, err := (&FFmpeg{}).Encode(context.Background(), nil, 0, 192000, Tags{}); !errors.Is(err, ErrSampleRate) {
		t.Errorf("zero rate error = %v, want ErrSampleRate", err)
	}
	if _, err := (&FFmpeg{}).Encode(context.Background(), nil, 44100, 0, Tags{}); err == nil {
		t.Error("zero bitrate should fail")
	}
}
