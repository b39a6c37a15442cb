// Package report builds the run result printed on stdout and the PDF
// statistics report written next to the audio.
package report

import (
	"encoding/json"
	"io"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Result is the JSON document printed after a successful run.
type Result struct {
	Status               string  `json:"status"`
	FrequencyCount       int     `json:"frequency_count"`
	FrequencyMin         float64 `json:"frequency_min"`
	FrequencyMax         float64 `json:"frequency_max"`
	FrequenciesProcessed int     `json:"frequencies_processed"`
	FrequenciesSkipped   int     `json:"frequencies_skipped"`
	AudioFile            string  `json:"audio_file"`
	AudioPath            string  `json:"audio_path"`
	AudioBytes           int64   `json:"audio_bytes"`
	PDFFile              string  `json:"pdf_file"`
	AromaID              string  `json:"aroma_id"`
	CompanyName          string  `json:"company_name"`
	JobID                string  `json:"job_id,omitempty"`
}

// Failure is the JSON document printed when a run fails.
type Failure struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewResult fills the frequency fields of a Result from the loaded list.
func NewResult(freqs []float64, processed int) Result {
	s := Summarize(freqs)
	return Result{
		Status:               StatusCompleted,
		FrequencyCount:       s.Count,
		FrequencyMin:         s.Min,
		FrequencyMax:         s.Max,
		FrequenciesProcessed: processed,
		FrequenciesSkipped:   s.Count - processed,
	}
}

// WriteJSON writes v as a single JSON line.
func WriteJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// WriteFailure writes the failure document for err.
func WriteFailure(w io.Writer, err error) error {
	return WriteJSON(w, Failure{Status: StatusFailed, Error: err.Error()})
}
