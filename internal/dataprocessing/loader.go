package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "loanprep/internal/errors"
	"loanprep/internal/table"
)

// nullTokens are the cell values read as missing. The set follows what
// common dataframe tooling treats as NA.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"#NA":  {},
	"<NA>": {},
}

const utf8BOM = "\ufeff"

// IsNullToken reports whether a raw cell value denotes a missing value
func IsNullToken(s string) bool {
	_, ok := nullTokens[s]
	return ok
}

// LoadFile reads a CSV file, or an .xlsx workbook, into a table. The first
// row is the header. A column is numeric when every non-missing cell parses
// as a number and text otherwise. A path that cannot be opened yields
// errors.ErrMissingInput.
func LoadFile(path string) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewMissingInputError(path, fmt.Errorf("%s is a directory", path))
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path)
	default:
		rows, err = readDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	t, err := buildTable(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("input_loaded",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))

	return t, nil
}

// ReadCSV parses CSV content from r. It is LoadFile without the file handling.
func ReadCSV(r io.Reader) (*table.Table, error) {
	rows, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	return buildTable(rows)
}

func readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}
	defer f.Close()

	rows, err := parseCSV(f)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return rows, nil
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	// short rows are padded later, long rows are rejected there
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// readWorkbook returns the rows of the first sheet that holds any data.
// Cells are read unformatted so a number styled as "5,000" stays numeric.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read sheet", err).
				WithContext("path", path).
				WithContext("sheet", name)
		}
		if len(rows) > 0 {
			slog.Debug("workbook_sheet_selected", slog.String("path", path), slog.String("sheet", name))
			return rows, nil
		}
	}
	return nil, nil
}

func buildTable(rows [][]string) (*table.Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, apperrors.NewParsingError("input has no header row", nil)
	}
	header := rows[0]
	records := rows[1:]

	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("line %d has %d fields, header has %d", i+2, len(rec), len(header)), nil)
		}
	}

	columns := make([]*table.Column, len(header))
	raw := make([]string, len(records))
	for j, name := range header {
		for i, rec := range records {
			if j < len(rec) {
				raw[i] = rec[j]
			} else {
				raw[i] = ""
			}
		}
		columns[j] = inferColumn(name, raw)
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid header", err)
	}
	return t, nil
}

// inferColumn builds a numeric column when every present value parses as a
// float, and a text column otherwise. An all-missing column is numeric.
func inferColumn(name string, raw []string) *table.Column {
	nums := make([]float64, len(raw))
	numeric := true
	for i, s := range raw {
		if IsNullToken(s) {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = v
	}
	if numeric {
		return table.NewNumeric(name, nums)
	}

	nulls := make([]bool, len(raw))
	for i, s := range raw {
		nulls[i] = IsNullToken(s)
	}
	return table.NewText(name, raw, nulls)
}
