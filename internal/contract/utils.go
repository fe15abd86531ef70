package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	GrowthColor  = color.New(color.FgGreen)            // GrowthColor marks a positive daily delta.
	DeclineColor = color.New(color.FgRed, color.Bold)  // DeclineColor marks a shrinking counter.
	FlatColor    = color.New(color.FgHiBlack)          // FlatColor marks a day without change.
	LiveColor    = color.New(color.FgCyan, color.Bold) // LiveColor marks values merged from a live fetch.
)

// FormatCount renders a counter with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatDelta renders a daily delta with an explicit sign.
func FormatDelta(n int64) string {
	if n > 0 {
		return "+" + humanize.Comma(n)
	}
	return humanize.Comma(n)
}

// GetColorDelta returns a signed, colored delta for console output (table).
func GetColorDelta(n int64) string {
	text := FormatDelta(n)
	switch {
	case n > 0:
		return GrowthColor.Sprint(text)
	case n < 0:
		return DeclineColor.Sprint(text)
	default:
		return FlatColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
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

// GetStoreDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hubstats.db"
	}
	return filepath.Join(homeDir, ".hubstats.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
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
