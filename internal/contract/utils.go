package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Inferred type families shown in schema output.
const (
	NumericValue  = "Numeric"
	TextValue     = "Text"
	DatetimeValue = "Datetime"
	BooleanValue  = "Boolean"
	OtherValue    = "Other"
)

// Color variables for console output.
var (
	NumericColor  = color.New(color.FgCyan, color.Bold)
	TextColor     = color.New(color.FgYellow)
	DatetimeColor = color.New(color.FgMagenta)
	BooleanColor  = color.New(color.FgGreen)
	OtherColor    = color.New(color.FgWhite)
	ErrorColor    = color.New(color.FgRed, color.Bold)
)

// GetPlainTypeLabel maps a backend inferred type onto one of the display
// families. This is the core logic used for CSV, JSON, and table printing.
func GetPlainTypeLabel(inferredType string) string {
	switch strings.ToLower(inferredType) {
	case "int", "integer", "bigint", "float", "double", "decimal", "numeric", "number":
		return NumericValue
	case "date", "datetime", "timestamp", "time":
		return DatetimeValue
	case "bool", "boolean":
		return BooleanValue
	case "string", "text", "varchar", "char", "object", "categorical":
		return TextValue
	default:
		return OtherValue
	}
}

// GetColorTypeLabel returns a colored type label for console output (table).
// It uses GetPlainTypeLabel to determine the string, then applies the color.
func GetColorTypeLabel(inferredType string) string {
	text := GetPlainTypeLabel(inferredType)

	switch text {
	case NumericValue:
		return NumericColor.Sprint(text)
	case DatetimeValue:
		return DatetimeColor.Sprint(text)
	case BooleanValue:
		return BooleanColor.Sprint(text)
	case TextValue:
		return TextColor.Sprint(text)
	default: // "Other"
		return OtherColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout for an empty path.
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

// GetStoreDBFilePath returns the path to the SQLite DB file for the workspace store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pilotctl_workspace.db"
	}
	return filepath.Join(homeDir, ".pilotctl_workspace.db")
}

// TruncateCell truncates a cell value to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis plus content.
func TruncateCell(value string, maxWidth int) string {
	runes := []rune(value)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return value
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
