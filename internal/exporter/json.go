package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-json"
)

// WriteJSON writes v as indented JSON to filePath, creating parent
// directories as needed. Like WriteCSV it replaces the file atomically.
func WriteJSON(filePath string, v interface{}) error {
	slog.Info("Writing JSON file", slog.String("file_path", filePath))

	return writeAtomic(filePath, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	})
}
