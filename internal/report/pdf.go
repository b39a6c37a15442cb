package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	histogramBins = 8
	barWidth      = 30
	sampleEntries = 20
	lineWidth     = 190.0
)

var (
	// ErrNoData means a report was requested for an empty frequency list.
	ErrNoData = errors.New("report: no frequencies provided")

	// ErrReportVerification means the PDF was written but is missing or empty.
	ErrReportVerification = errors.New("report: pdf verification failed")
)

// Params describes how the audio for a report was produced.
type Params struct {
	Company     string
	RunID       string
	Generated   time.Time
	Duration    time.Duration
	SampleRate  int
	Format      string
	BitrateKbps int
	MinHz       float64
	MaxHz       float64
	VolumeDB    float64
	Processed   int
}

// newDocument lays out the technical report for freqs on a single A4 page
// (more if the layout overflows).
func newDocument(freqs []float64, p Params) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("NeuroAudio Technical Report", false)
	pdf.SetCreator("neuroaudio", false)
	pdf.SetCreationDate(p.Generated)
	pdf.AddPage()

	line := func(h float64, txt string) {
		pdf.CellFormat(lineWidth, h, tr(txt), "", 1, "L", false, 0, "")
	}
	heading := func(txt string) {
		pdf.SetFont("Arial", "B", 12)
		line(8, txt)
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 10)
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(lineWidth, 10, "NeuroAudio Technical Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(lineWidth, 5, "Professional Audio Frequency Processing Platform", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	s := Summarize(freqs)

	heading("PROCESSING SUMMARY")
	line(6, "Company: "+p.Company)
	line(6, "Aroma ID: "+p.RunID)
	line(6, "Generated: "+p.Generated.Format(time.DateTime))
	line(6, fmt.Sprintf("Total Frequencies: %d", s.Count))
	line(6, fmt.Sprintf("Frequencies Mixed: %d", p.Processed))
	line(6, fmt.Sprintf("Audio Duration: %g seconds", p.Duration.Seconds()))
	line(6, fmt.Sprintf("Sample Rate: %g kHz", float64(p.SampleRate)/1000))
	line(6, fmt.Sprintf("Output Format: %s (%d kbps)", strings.ToUpper(p.Format), p.BitrateKbps))
	pdf.Ln(10)

	heading("FREQUENCY ANALYSIS")
	line(6, fmt.Sprintf("Minimum Frequency: %.6f THz", s.Min))
	line(6, fmt.Sprintf("Maximum Frequency: %.6f THz", s.Max))
	line(6, fmt.Sprintf("Mean Frequency: %.6f THz", s.Mean))
	line(6, fmt.Sprintf("Standard Deviation: %.6f THz", s.StdDev))
	line(6, fmt.Sprintf("Frequency Range: %.6f THz", s.Range()))
	pdf.Ln(10)

	heading("FREQUENCY HISTOGRAM")
	pdf.SetFont("Courier", "", 8)
	bins := Histogram(freqs, histogramBins)
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	for _, b := range bins {
		n := 0
		if peak > 0 {
			n = b.Count * barWidth / peak
		}
		pdf.CellFormat(50, 4, fmt.Sprintf("%.3f-%.3f THz", b.Start, b.End), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 4, strings.Repeat("#", n)+strings.Repeat("-", barWidth-n), "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 4, fmt.Sprintf("(%d)", b.Count), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	heading("TECHNICAL PARAMETERS")
	line(6, fmt.Sprintf("Audio Frequency Range: %.1f - %.1f kHz", p.MinHz/1000, p.MaxHz/1000))
	line(6, fmt.Sprintf("Volume Level: %g dB", p.VolumeDB))
	line(6, "Processing Method: Sine Wave Generation")
	line(6, "Overlay Mode: Additive Synthesis")
	pdf.Ln(10)

	heading(fmt.Sprintf("FREQUENCY SAMPLE (First %d entries)", sampleEntries))
	pdf.SetFont("Arial", "", 8)
	sample := freqs[:min(len(freqs), sampleEntries)]
	for i, f := range sample {
		ln := 0
		if i%2 == 1 || i == len(sample)-1 {
			ln = 1
		}
		pdf.CellFormat(lineWidth/2, 4, fmt.Sprintf("%2d. %.6f THz", i+1, f), "", ln, "L", false, 0, "")
	}
	pdf.Ln(20)

	pdf.CellFormat(lineWidth, 4, "This report was generated automatically by the NeuroAudio processing system.", "", 1, "C", false, 0, "")
	return pdf
}

// WritePDF renders the report for freqs to w.
func WritePDF(w io.Writer, freqs []float64, p Params) error {
	if len(freqs) == 0 {
		return ErrNoData
	}
	return newDocument(freqs, p).Output(w)
}

// WriteFile writes the PDF report to path and returns its size. A missing
// or empty file afterwards is reported as ErrReportVerification.
func WriteFile(path string, freqs []float64, p Params) (int64, error) {
	if len(freqs) == 0 {
		return 0, ErrNoData
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create report dir: %w", err)
	}
	if err := newDocument(freqs, p).OutputFileAndClose(path); err != nil {
		return 0, fmt.Errorf("write pdf %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrReportVerification, path, err)
	}
	if info.Size() == 0 {
		os.Remove(path)
		return 0, fmt.Errorf("%w: %s is empty", ErrReportVerification, path)
	}
	return info.Size(), nil
}
