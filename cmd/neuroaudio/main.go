package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/config"
	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/encode"
	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/export"
	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/loader"
	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/report"
	"github.com/jeniferGoncalvesDaSilvaDev/NeuroAudioWizard/internal/synth"
	"github.com/pion/logging"
	"golang.org/x/term"
)

const usage = "usage: neuroaudio <frequencies-file> <original-name> [job-id]"

// job is one invocation of the pipeline.
type job struct {
	input        string
	originalName string
	id           string
}

func main() {
	args := os.Args[1:]
	if len(args) < 2 || len(args) > 3 {
		log.Println(usage)
		os.Exit(1)
	}
	j := job{input: args[0], originalName: args[1]}
	if len(args) == 3 {
		j.id = args[2]
	}

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var progress func(done, total int)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rMixing %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	res, err := run(ctx, cfg, j, progress)
	if err != nil {
		log.Printf("Processing failed: %v", err)
		report.WriteFailure(os.Stdout, err)
		cancel()
		os.Exit(1)
	}
	if err := report.WriteJSON(os.Stdout, res); err != nil {
		log.Fatalf("write result: %v", err)
	}
}

// run loads the readings, mixes them, exports the audio and writes the PDF
// report. Logs go to stderr; the returned Result is for stdout.
func run(ctx context.Context, cfg config.Config, j job, progress func(done, total int)) (report.Result, error) {
	if err := cfg.Validate(); err != nil {
		return report.Result{}, fmt.Errorf("config: %w", err)
	}

	logs := logging.NewDefaultLoggerFactory()
	logs.DefaultLogLevel = logLevel(cfg.LogLevel)

	company := report.CompanyName(j.originalName)
	runID := report.NewRunID()
	log.Printf("Processing %s for company %s (aroma ID %s)", j.originalName, company, runID)

	freqs, err := loader.Load(j.input)
	if err != nil {
		return report.Result{}, err
	}
	log.Printf("Loaded %d frequencies from %s", len(freqs), j.input)

	enc, err := encode.ForFormat(cfg.Format, cfg.FFmpegPath)
	if err != nil {
		return report.Result{}, err
	}

	mixer, err := synth.NewMixer(synth.Config{
		Duration:   cfg.Duration,
		SampleRate: cfg.SampleRate,
		VolumeDB:   cfg.VolumeDB,
		Band:       synth.Band{Min: cfg.MinFrequencyHz, Max: cfg.MaxFrequencyHz},
		Workers:    cfg.Workers,
	}, synth.WithLogger(logs.NewLogger("synth")), synth.WithProgress(progress))
	if err != nil {
		return report.Result{}, err
	}

	start := time.Now()
	batch, err := mixer.AddFrequencies(ctx, freqs)
	if err != nil {
		return report.Result{}, fmt.Errorf("mix: %w", err)
	}
	track, err := mixer.Finalize()
	if err != nil {
		return report.Result{}, err
	}
	log.Printf("Mixed %d/%d frequencies in %v (%d skipped)",
		batch.Processed, batch.Total, time.Since(start).Round(time.Millisecond), len(batch.Skipped))

	outDir := filepath.Join(cfg.OutputDir, company)
	exporter := export.New(enc, export.WithLogger(logs.NewLogger("export")))
	audioName := report.AudioFilename(company, runID, exporter.Extension())
	art, err := exporter.Export(ctx, track, filepath.Join(outDir, audioName), cfg.Bitrate(), encode.Tags{
		Title:   cfg.Title,
		Artist:  cfg.Artist,
		Comment: cfg.Comment,
	})
	if err != nil {
		return report.Result{}, err
	}

	reportName := report.ReportFilename(company, runID)
	reportSize, err := report.WriteFile(filepath.Join(outDir, reportName), freqs, report.Params{
		Company:     company,
		RunID:       runID,
		Generated:   time.Now(),
		Duration:    cfg.Duration,
		SampleRate:  cfg.SampleRate,
		Format:      cfg.Format,
		BitrateKbps: cfg.BitrateKbps,
		MinHz:       cfg.MinFrequencyHz,
		MaxHz:       cfg.MaxFrequencyHz,
		VolumeDB:    cfg.VolumeDB,
		Processed:   batch.Processed,
	})
	if err != nil {
		return report.Result{}, err
	}
	log.Printf("PDF report generated: %s (%d bytes)", reportName, reportSize)

	res := report.NewResult(freqs, batch.Processed)
	res.AudioFile = audioName
	res.AudioPath = art.Path
	res.AudioBytes = art.Size
	res.PDFFile = reportName
	res.AromaID = runID
	res.CompanyName = company
	res.JobID = j.id
	return res, nil
}

// logLevel maps NEUROAUDIO_LOG_LEVEL onto pion's levels. Unknown names mean info.
func logLevel(name string) logging.LogLevel {
	switch name {
	case "disabled", "off", "none":
		return logging.LogLevelDisabled
	case "error":
		return logging.LogLevelError
	case "warn", "warning":
		return logging.LogLevelWarn
	case "debug":
		return logging.LogLevelDebug
	case "trace":
		return logging.LogLevelTrace
	default:
		return logging.LogLevelInfo
	}
}
