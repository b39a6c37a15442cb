package synth

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pion/logging"
	"golang.org/x/sync/errgroup"
)

// progressEvery is how often (in items) batch progress is logged.
const progressEvery = 100

// Config fixes the shape of the master buffer and of every tone mixed into it.
type Config struct {
	Duration   time.Duration
	SampleRate int
	VolumeDB   float64
	Band       Band
	Workers    int // tones synthesized concurrently; overlay stays single-writer
}

// DefaultConfig returns the 30 s / 44.1 kHz / -10 dB / 18-22 kHz setup.
func DefaultConfig() Config {
	return Config{
		Duration:   DefaultDuration,
		SampleRate: DefaultSampleRate,
		VolumeDB:   DefaultVolumeDB,
		Band:       DefaultBand(),
		Workers:    1,
	}
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithLogger sets the logger used for progress and skipped items.
func WithLogger(l logging.LeveledLogger) Option {
	return func(m *Mixer) {
		if l != nil {
			m.log = l
		}
	}
}

// WithProgress registers a callback invoked after every batch item. It
// replaces the periodic progress log lines.
func WithProgress(fn func(done, total int)) Option {
	return func(m *Mixer) {
		m.progress = fn
	}
}

// Skip records one batch item that did not reach the mix.
type Skip struct {
	Index int
	THz   float64
	Err   error
}

// BatchResult summarizes one AddFrequencies call.
type BatchResult struct {
	Total     int
	Processed int
	Skipped   []Skip // ordered by Index
}

// Track is the finished mix. Samples must be treated as read-only.
type Track struct {
	SampleRate int
	Samples    []float64
	Tones      int
}

// Duration returns the playing time of the track.
func (t *Track) Duration() time.Duration {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(len(t.Samples)) * int64(time.Second) / int64(t.SampleRate))
}

// toneResult carries one item through render -> collect.
type toneResult struct {
	index int
	thz   float64
	tone  Tone
	err   error
}

// Mixer owns the master buffer and sums tones into it.
type Mixer struct {
	cfg      Config
	log      logging.LeveledLogger
	progress func(done, total int)

	mu        sync.Mutex
	master    []float64
	tones     int
	finalized bool
}

// NewMixer allocates a silent master buffer for cfg.
func NewMixer(cfg Config, opts ...Option) (*Mixer, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("mixer sample rate must be > 0: %d", cfg.SampleRate)
	}
	if !cfg.Band.Valid() {
		return nil, fmt.Errorf("mixer band invalid: [%g, %g]", cfg.Band.Min, cfg.Band.Max)
	}
	n := SampleCount(cfg.Duration, cfg.SampleRate)
	if n <= 0 {
		return nil, fmt.Errorf("mixer duration %v at %d Hz yields no samples", cfg.Duration, cfg.SampleRate)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	m := &Mixer{
		cfg:    cfg,
		master: make([]float64, n),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.log == nil {
		m.log = logging.NewDefaultLoggerFactory().NewLogger("synth")
	}
	return m, nil
}

// Len returns the master buffer length in samples.
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.master)
}

// Tones returns how many tones have been summed so far.
func (m *Mixer) Tones() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tones
}

// Overlay adds t sample by sample into the master buffer.
// No clipping happens here; the float sum is clipped at export.
func (m *Mixer) Overlay(t Tone) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finalized {
		return ErrFinalized
	}
	if len(t.Samples) != len(m.master) {
		return fmt.Errorf("%w: got %d samples, want %d", ErrLengthMismatch, len(t.Samples), len(m.master))
	}
	for i, s := range t.Samples {
		m.master[i] += s
	}
	m.tones++
	return nil
}

// AddFrequencies maps, synthesizes and overlays each THz reading in order.
// Items that fail are logged and listed in BatchResult.Skipped; they never
// abort the batch. The only batch-level failures are cancellation and a
// non-empty input that leaves the mix without any tone.
func (m *Mixer) AddFrequencies(ctx context.Context, thz []float64) (BatchResult, error) {
	res := BatchResult{Total: len(thz)}

	m.mu.Lock()
	finalized := m.finalized
	m.mu.Unlock()
	if finalized {
		return res, ErrFinalized
	}

	m.log.Infof("Processing %d frequencies...", len(thz))

	var err error
	if m.cfg.Workers > 1 && len(thz) > 1 {
		err = m.addParallel(ctx, thz, &res)
	} else {
		err = m.addSequential(ctx, thz, &res)
	}
	sort.Slice(res.Skipped, func(i, j int) bool { return res.Skipped[i].Index < res.Skipped[j].Index })
	if err != nil {
		return res, err
	}

	if len(thz) > 0 && m.Tones() == 0 {
		return res, fmt.Errorf("%w: %d frequencies, %d skipped", ErrNothingMixed, len(thz), len(res.Skipped))
	}
	return res, nil
}

// Finalize hands the master buffer over as a Track. The mixer cannot be
// used afterwards.
func (m *Mixer) Finalize() (*Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finalized {
		return nil, ErrFinalized
	}
	t := &Track{
		SampleRate: m.cfg.SampleRate,
		Samples:    m.master,
		Tones:      m.tones,
	}
	m.master = nil
	m.finalized = true
	return t, nil
}

func (m *Mixer) addSequential(ctx context.Context, thz []float64, res *BatchResult) error {
	for i, v := range thz {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.collect(m.render(i, v), res)
		m.report(i+1, len(thz))
	}
	return nil
}

// addParallel renders tones on up to cfg.Workers goroutines. Collection
// (overlay + bookkeeping) is serialized under collectMu.
func (m *Mixer) addParallel(ctx context.Context, thz []float64, res *BatchResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)

	var (
		collectMu sync.Mutex
		done      int
	)
	for i, v := range thz {
		i, v := i, v
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := m.render(i, v)

			collectMu.Lock()
			defer collectMu.Unlock()
			m.collect(r, res)
			done++
			m.report(done, len(thz))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (m *Mixer) render(index int, thz float64) toneResult {
	hz, err := ToHertz(thz)
	if err != nil {
		return toneResult{index: index, thz: thz, err: err}
	}
	tone, err := Synthesize(hz, m.cfg.Duration, m.cfg.SampleRate, m.cfg.VolumeDB, m.cfg.Band)
	return toneResult{index: index, thz: thz, tone: tone, err: err}
}

func (m *Mixer) collect(r toneResult, res *BatchResult) {
	err := r.err
	if err == nil {
		err = m.Overlay(r.tone)
	}
	if err != nil {
		m.log.Warnf("Error processing frequency %vTHz (skipped): %v", r.thz, err)
		res.Skipped = append(res.Skipped, Skip{Index: r.index, THz: r.thz, Err: err})
		return
	}
	res.Processed++
}

// report hands progress to the callback when one is set; otherwise it logs
// every progressEvery items and at the end.
func (m *Mixer) report(done, total int) {
	if m.progress != nil {
		m.progress(done, total)
		return
	}
	if done%progressEvery == 0 || done == total {
		m.log.Infof("Progress: %d/%d frequencies processed", done, total)
	}
}
