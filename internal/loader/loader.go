// Package loader reads THz readings from CSV or plain-text files.
package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column is the CSV header holding the readings.
const Column = "THz"

var (
	// ErrMissingColumn means the CSV header has no THz column.
	ErrMissingColumn = errors.New("loader: THz column not found")

	// ErrNoFrequencies means the file held no non-empty readings.
	ErrNoFrequencies = errors.New("loader: no frequencies found")

	// ErrUnsupported is returned for file types Load cannot read.
	ErrUnsupported = errors.New("loader: unsupported file type")
)

// Load reads readings from path. ".csv" files need a THz header column;
// ".txt" and ".dat" files hold one value per line. Empty cells are dropped.
// Cells that are present but not numeric are kept as NaN so that the count
// reflects the file while synthesis skips them.
func Load(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".txt", ".dat", "":
		return ReadLines(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

// ReadCSV reads the THz column of a CSV document with a header row.
func ReadCSV(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoFrequencies
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")) == Column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w; available columns: %s", ErrMissingColumn, strings.Join(header, ", "))
	}

	var out []float64
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if v, ok := parseCell(rec[col]); ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoFrequencies
	}
	return out, nil
}

// ReadLines reads one value per line, ignoring blank lines and '#' comments.
func ReadLines(r io.Reader) ([]float64, error) {
	var out []float64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if v, ok := parseCell(line); ok {
			out = append(out, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoFrequencies
	}
	return out, nil
}

// parseCell returns ok=false for empty cells. Decimal commas are accepted.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
		return v, true
	}
	return math.NaN(), true
}
