package report

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UnknownCompany is used when no company can be read from the upload name.
const UnknownCompany = "Unknown"

// CompanyName extracts the company from an upload name shaped like
// "frequencies_2024_Acme.xlsx": the last '_' token up to its first '.'.
// Names with two or fewer tokens yield UnknownCompany. Path separators are
// replaced so the result is always a single directory name.
func CompanyName(originalName string) string {
	parts := strings.Split(originalName, "_")
	if len(parts) <= 2 {
		return UnknownCompany
	}
	name, _, _ := strings.Cut(parts[len(parts)-1], ".")
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(name))
	if name == "" {
		return UnknownCompany
	}
	return name
}

// NewRunID returns a 10-character upper-case hex identifier taken from a
// random UUID.
func NewRunID() string {
	u := uuid.New()
	return strings.ToUpper(hex.EncodeToString(u[:])[:10])
}

// AudioFilename names the audio artifact for a run.
func AudioFilename(company, runID, ext string) string {
	return fmt.Sprintf("NeuroAudio_%s_%s.%s", company, runID, ext)
}

// ReportFilename names the PDF report for a run.
func ReportFilename(company, runID string) string {
	return fmt.Sprintf("Report_%s_%s.pdf", company, runID)
}
