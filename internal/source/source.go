package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avogel/mailslip/internal/types"

	"github.com/xuri/excelize/v2"
)

// Column names are matched exactly, case-sensitive.
const (
	IDColumn    = "id"
	EmailColumn = "contact email"
)

// ErrMissingColumn reports a required column absent from the header row.
var ErrMissingColumn = fmt.Errorf("missing required column")

// Load reads records from a spreadsheet file. The extension decides the
// format: .csv or .xlsx. The email cell is split on delimiter and each part
// trimmed; a row may legitimately end up with zero emails, which the runner
// skips. Rows with an empty id are dropped here.
func Load(path, delimiter string) ([]types.Record, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var headers []string
	var rows [][]string
	var err error

	switch ext {
	case ".csv":
		headers, rows, err = readCSV(path)
	case ".xlsx":
		headers, rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	idIdx, emailIdx := -1, -1
	for i, h := range headers {
		switch strings.TrimSpace(h) {
		case IDColumn:
			idIdx = i
		case EmailColumn:
			emailIdx = i
		}
	}
	if idIdx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, IDColumn)
	}
	if emailIdx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, EmailColumn)
	}

	var records []types.Record
	for _, row := range rows {
		id := ""
		if idIdx < len(row) {
			id = strings.TrimSpace(row[idIdx])
		}
		if id == "" {
			continue
		}

		emailCell := ""
		if emailIdx < len(row) {
			emailCell = row[emailIdx]
		}

		records = append(records, types.Record{
			ID:     id,
			Emails: SplitEmails(emailCell, delimiter),
		})
	}

	return records, nil
}

// SplitEmails splits a raw cell value on delimiter, trims each part and
// drops empties. An all-whitespace cell yields nil.
func SplitEmails(cell, delimiter string) []string {
	var emails []string
	for _, part := range strings.Split(cell, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}

func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file: %s", path)
	}

	return records[0], records[1:], nil
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %s: %w", sheetName, err)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty file: %s", path)
	}

	return rows[0], rows[1:], nil
}
