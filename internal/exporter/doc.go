// Package exporter writes pipeline results to disk.
//
// CSVWriter serializes a table with its header row, formatting numbers in
// their shortest round-trip form and missing values as empty cells. An
// optional UTF-8 BOM helps spreadsheet tools detect the encoding.
// WriteJSON is used for the run manifest.
//
// Both writers create missing parent directories and write through a
// temporary file that is renamed into place, so a failed run never leaves a
// truncated output behind.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(false)
//	if err := writer.WriteTable("data/processed/loans.csv", t); err != nil {
//	    return err
//	}
package exporter
