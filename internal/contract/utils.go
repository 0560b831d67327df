package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Usage label constants for table output.
const (
	HeavyValue    = "Heavy"    // Heavy Copilot involvement
	ModerateValue = "Moderate" // Moderate Copilot involvement
	LightValue    = "Light"    // Light Copilot involvement
	NoneValue     = "None"     // No Copilot involvement
)

// Color variables for console output.
var (
	HeavyColor    = color.New(color.FgGreen, color.Bold) // heavyColor highlights strong adoption.
	ModerateColor = color.New(color.FgCyan)              // moderateColor represents steady usage.
	LightColor    = color.New(color.FgYellow)            // lightColor represents occasional usage.
	NoneColor     = color.New(color.FgWhite)             // noneColor represents absent signal.
)

// GetPlainLabel returns a plain text label indicating the level of
// Copilot involvement based on the assisted percentage. This is the
// core logic used for CSV, JSON, and table printing.
func GetPlainLabel(pct float64) string {
	switch {
	case pct >= 60:
		return HeavyValue
	case pct >= 30:
		return ModerateValue
	case pct > 0:
		return LightValue
	default:
		return NoneValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(pct float64) string {
	text := GetPlainLabel(pct)

	switch text {
	case HeavyValue:
		return HeavyColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	case LightValue:
		return LightColor.Sprint(text)
	default: // "None"
		return NoneColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based
// on the provided file path. It falls back to os.Stdout when no path is
// given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogProgress logs a progress message to stderr when verbose mode is on.
func LogProgress(verbose bool, format string, args ...any) {
	if !verbose {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for response caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prpulse_cache.db"
	}
	return filepath.Join(homeDir, ".prpulse_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prpulse_runs.db"
	}
	return filepath.Join(homeDir, ".prpulse_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
