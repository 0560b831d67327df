// Package output renders an analysis report in the configured format.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// PrintReport writes the report, dispatching on the output format
// configured. Table output goes to stdout unless --output-file is set.
func PrintReport(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportMarkdown(w, report)
		}, "Wrote Markdown")
	case schema.ParquetOut:
		// Parquet needs a seekable file, so no stdout fallback here.
		return writeReportParquet(report, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, report, cfg, duration)
		}, "Wrote table")
	}
}

// writeWithFile handles the common pattern of opening a file, writing
// to it, and cleaning up. It accepts a writer function that takes an
// io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
