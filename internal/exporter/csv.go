package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"loanprep/internal/config"
	apperrors "loanprep/internal/errors"
	"loanprep/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes tables as CSV files
type CSVWriter struct {
	bomPrefix bool
}

// NewCSVWriter creates a new CSV writer instance. With bomPrefix set the
// file starts with a UTF-8 BOM so spreadsheet tools detect the encoding.
func NewCSVWriter(bomPrefix bool) *CSVWriter {
	return &CSVWriter{bomPrefix: bomPrefix}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteTable writes the header and every row of t to filePath in table
// order, creating parent directories as needed.
func (w *CSVWriter) WriteTable(filePath string, t *table.Table) error {
	return WriteCSV(filePath, WriteOptions{
		Headers:   t.Names(),
		Records:   t.Records(),
		BOMPrefix: w.bomPrefix,
	})
}

// WriteCSV writes data to a CSV file with the given options. The content
// goes to a temporary file in the target directory which is renamed over
// filePath once complete, so a failed write never leaves a partial file.
func WriteCSV(filePath string, options WriteOptions) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	return writeAtomic(filePath, func(out io.Writer) error {
		if options.BOMPrefix {
			if _, err := out.Write(utf8BOM); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(out)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// writeAtomic creates filePath through a temporary sibling file
func writeAtomic(filePath string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, config.DirPerm); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError("failed to create file", err).WithContext("path", filePath)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return apperrors.NewStorageError("failed to write file", err).WithContext("path", filePath)
	}
	if err := tmp.Chmod(config.FilePerm); err != nil {
		return apperrors.NewStorageError("failed to set file mode", err).WithContext("path", filePath)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close file", err).WithContext("path", filePath)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return apperrors.NewStorageError("failed to move file into place", err).WithContext("path", filePath)
	}
	return nil
}
