package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tablestore/pkg/metrics"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#8B5CF6")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true).
				Padding(0, 2).
				MarginBottom(1)

	headerRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8B5CF6")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

// Render formats a matrix run as a styled comparison table.
func Render(results []Result) string {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render("Write strategy comparison"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-16s %-15s %12s %12s %12s %12s %14s  %s",
		"WRITE", "ALLOCATION", "ELAPSED", "WRITES", "ZERO-FILLS", "RESERVES", "BYTES OUT", "CHECK")
	b.WriteString(headerRowStyle.Render(header))
	b.WriteString("\n")

	for _, r := range results {
		check := okStyle.Render("ok")
		if !r.Verified {
			check = failStyle.Render("MISMATCH")
		}

		line := fmt.Sprintf("%-16s %-15s %12s %12.0f %12.0f %12.0f %14.0f  ",
			r.Write.String(),
			r.Alloc.String(),
			formatDuration(r.Elapsed),
			r.IO.Calls[metrics.OpWrite],
			r.IO.Calls[metrics.OpZeroFill],
			r.IO.Calls[metrics.OpReserve]+r.IO.Calls[metrics.OpTruncate],
			r.IO.Bytes[metrics.OpWrite],
		)
		b.WriteString(line)
		b.WriteString(check)
		b.WriteString("\n")
	}

	if len(results) > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(
			"%d rows per table, checksum %.3f", results[0].Rows, results[0].Expected)))
		b.WriteString("\n")
	}

	return b.String()
}

// formatDuration formats a duration with the largest sensible unit.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

// jsonResult is the serialized form of one run.
type jsonResult struct {
	Write     string             `json:"write_strategy"`
	Alloc     string             `json:"allocation_strategy"`
	Rows      uint64             `json:"rows"`
	ElapsedNS time.Duration      `json:"elapsed_ns"`
	Checksum  float64            `json:"checksum"`
	Expected  float64            `json:"expected_checksum"`
	Verified  bool               `json:"verified"`
	IOCalls   map[string]float64 `json:"io_calls"`
	IOBytes   map[string]float64 `json:"io_bytes"`
	Path      string             `json:"path,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// SaveJSON writes the matrix results to a JSON report file.
func SaveJSON(results []Result, filename string) error {
	out := make([]jsonResult, len(results))
	now := time.Now()
	for i, r := range results {
		out[i] = jsonResult{
			Write:     r.Write.String(),
			Alloc:     r.Alloc.String(),
			Rows:      r.Rows,
			ElapsedNS: r.Elapsed,
			Checksum:  r.Checksum,
			Expected:  r.Expected,
			Verified:  r.Verified,
			IOCalls:   r.IO.Calls,
			IOBytes:   r.IO.Bytes,
			Path:      r.Path,
			Timestamp: now,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o600)
}
