// package formatter provides functions to export join history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/shared"
)

const timeLayout = time.RFC3339

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, md/markdown and txt/text, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// ExportToCSV converts attempts to CSV format with columns: ID, Sequence, Run, Channel, Status, Source, Entity, Error, CreatedAt
func ExportToCSV(attempts []*models.JoinAttempt) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Run", "Channel", "Status", "Source", "Entity", "Error", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range attempts {
		record := []string{
			a.ID(),
			strconv.Itoa(a.Sequence()),
			a.RunID(),
			a.Channel(),
			a.Status(),
			string(a.Source()),
			entity(a),
			a.ErrorMessage(),
			a.CreatedAt().UTC().Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts attempts to a Markdown report with a summary and a table
func ExportToMarkdown(attempts []*models.JoinAttempt, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Join history"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	joined, failed := summary(attempts)
	buf.WriteString(fmt.Sprintf("**Attempts**: %d\n", len(attempts)))
	buf.WriteString(fmt.Sprintf("**Joined**: %d\n", joined))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", failed))

	if len(attempts) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Channel | Status | Source | Entity | Error | At |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, a := range attempts {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
			a.Sequence(),
			cell(a.Channel()),
			a.Status(),
			a.Source(),
			entity(a),
			cell(a.ErrorMessage()),
			a.CreatedAt().UTC().Format(timeLayout),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts attempts to plain text format
func ExportToText(attempts []*models.JoinAttempt) ([]byte, error) {
	var buf bytes.Buffer

	joined, failed := summary(attempts)
	buf.WriteString(fmt.Sprintf("Attempts: %d (joined %d, failed %d)\n\n", len(attempts), joined, failed))

	for i, a := range attempts {
		line := fmt.Sprintf("%d. [%s] %s", i+1, a.Status(), a.Channel())
		if a.Joined() {
			line += fmt.Sprintf(" via %s", a.Source())
		} else if msg := a.ErrorMessage(); msg != "" {
			line += ": " + msg
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// Export renders attempts in the given format.
func Export(attempts []*models.JoinAttempt, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(attempts)
	case FormatMarkdown:
		return ExportToMarkdown(attempts, "")
	case FormatText:
		return ExportToText(attempts)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes attempts to path in the given format, creating parent directories as needed.
//
// Defaults to join_history.{format} in the working directory.
func WriteExport(attempts []*models.JoinAttempt, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("join_history.%s", format)
	}

	data, err := Export(attempts, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func entity(a *models.JoinAttempt) string {
	if a.Peer().IsZero() {
		return ""
	}
	return a.Peer().String()
}

// cell escapes pipes and newlines so a value stays inside one Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func summary(attempts []*models.JoinAttempt) (joined, failed int) {
	for _, a := range attempts {
		if a.Joined() {
			joined++
		} else {
			failed++
		}
	}
	return joined, failed
}
