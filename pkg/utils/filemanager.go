// =============================================================================
// Genset Invoicer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the invoicer, including:
//   - Output directory management
//   - Output file naming
//   - Atomic file writes (exported PDFs, state file)
//   - Batch export summary and error logs
//
// NAMING STRATEGY:
//   - Exported documents are named from a format string such as
//     "{serial}_{customer}.pdf" (see GenerateOutputFileName)
//   - Customer names are reduced to [a-zA-Z0-9_] so the name is safe on
//     every file system
//   - Logs are named "<kind>_<run timestamp>.txt" in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultFileFormat names exported documents after their print title.
const DefaultFileFormat = "{serial}_{customer}.pdf"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// SanitizeName replaces every character outside [a-zA-Z0-9] with "_".
func SanitizeName(s string) string {
	return unsafeNameChars.ReplaceAllString(s, "_")
}

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     {serial}    - Document serial number
//     {customer}  - Customer name, sanitized
//     {booking}   - Booking reference, sanitized
//     If empty, DefaultFileFormat is used.
//   - params: A map of placeholder values (keys without braces).
//   - ext: The required extension, e.g. ".pdf". Appended when missing.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//
//	format: "{serial}_{customer}.pdf"
//	params: {"serial": "INV-2026-100", "customer": "Acme Ltd."}
//	output: "INV-2026-100_Acme_Ltd_.pdf"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	if format == "" {
		format = DefaultFileFormat
	}
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		switch key {
		case "customer", "booking":
			value = SanitizeName(value)
		}
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Serials may carry separators; a file name never does.
	result = strings.ReplaceAll(result, string(os.PathSeparator), "_")

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// =============================================================================
// FILE WRITING
// =============================================================================

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents one document that failed to export.
type ErrorLogEntry struct {
	Timestamp    time.Time
	InvoiceID    string
	Serial       string
	Customer     string
	ErrorType    string
	ErrorMessage string
	Attempts     int
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//   - runAt: The start of the run; it names the file.
//
// RETURNS:
//   - The path to the error log file, or "" when there is nothing to log.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string, runAt time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("export_errors_%s.txt", runAt.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Genset Invoicer - Export Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:  %s\n"+
			"  Invoice:    %s\n"+
			"  Serial:     %s\n"+
			"  Customer:   %s\n"+
			"  Error Type: %s\n"+
			"  Message:    %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.InvoiceID,
			entry.Serial,
			entry.Customer,
			entry.ErrorType,
			entry.ErrorMessage)
		if entry.Attempts > 0 {
			fmt.Fprintf(writer, "  Attempts:   %d\n", entry.Attempts)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// EXPORT SUMMARY
// =============================================================================

// ExportSummary contains summary information about one batch export.
type ExportSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Customer  string
	Backend   string
	Theme     string
	Total     int
	Processed int
	Exported  []ExportedFileInfo
	Failed    []FailedFileInfo
}

// ExportedFileInfo describes a successfully exported document.
type ExportedFileInfo struct {
	Serial      string
	OutputFile  string
	Attempts    int
	ProcessTime time.Duration
}

// FailedFileInfo describes a document that failed to export.
type FailedFileInfo struct {
	Serial       string
	ErrorMessage string
}

// WriteSummaryLog writes an export summary to a log file.
//
// PARAMETERS:
//   - summary: The export summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ExportSummary, outputDir string) (string, error) {
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("export_summary_%s.txt", summary.StartTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Genset Invoicer - Export Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Customer:       %s\n"+
		"  Backend:        %s\n"+
		"  Theme:          %s\n\n"+
		"Statistics:\n"+
		"  Invoices:       %d\n"+
		"  Processed:      %d\n"+
		"  Exported:       %d\n"+
		"  Failed:         %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Customer,
		summary.Backend,
		summary.Theme,
		summary.Total,
		summary.Processed,
		len(summary.Exported),
		len(summary.Failed))

	if len(summary.Exported) > 0 {
		writer.WriteString("Exported Documents:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ef := range summary.Exported {
			fmt.Fprintf(writer, "  Serial:       %s\n", ef.Serial)
			fmt.Fprintf(writer, "  Output:       %s\n", ef.OutputFile)
			fmt.Fprintf(writer, "  Attempts:     %d\n", ef.Attempts)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", ef.ProcessTime.String())
		}
	}

	if len(summary.Failed) > 0 {
		writer.WriteString("Failed Documents:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.Failed {
			fmt.Fprintf(writer, "  Serial: %s\n", ff.Serial)
			fmt.Fprintf(writer, "  Error:  %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
