package source

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestSplitEmails(t *testing.T) {
	tests := []struct {
		name      string
		cell      string
		delimiter string
		expected  []string
	}{
		{"Two addresses", "a@x.com; b@y.com", ";", []string{"a@x.com", "b@y.com"}},
		{"Comma delimiter", "a@x.com,b@y.com", ",", []string{"a@x.com", "b@y.com"}},
		{"Single address", "a@x.com", ";", []string{"a@x.com"}},
		{"Surrounding whitespace", "  a@x.com  ", ";", []string{"a@x.com"}},
		{"Empty cell", "", ";", nil},
		{"Only delimiters", " ; ; ", ";", nil},
		{"Trailing delimiter", "a@x.com;", ";", []string{"a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitEmails(tt.cell, tt.delimiter)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitEmails(%q, %q) = %v; want %v", tt.cell, tt.delimiter, got, tt.expected)
			}
		})
	}
}

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	w.WriteAll(rows)
	f.Close()

	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"id", "contact email", "name"},
		{"42", "a@x.com; b@y.com", "Alice"},
		{"7", "", "Bob"},
		{"", "c@z.com", "dropped"},
	})

	records, err := Load(path, ";")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Load returned %d records; want 2", len(records))
	}

	if records[0].ID != "42" {
		t.Errorf("first record id = %s; want 42", records[0].ID)
	}
	if !reflect.DeepEqual(records[0].Emails, []string{"a@x.com", "b@y.com"}) {
		t.Errorf("first record emails = %v", records[0].Emails)
	}

	// Empty email field is a valid record with zero emails.
	if records[1].ID != "7" || len(records[1].Emails) != 0 {
		t.Errorf("second record = %+v; want id 7 with no emails", records[1])
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"id", "contact email"},
		{"42", "a@x.com, b@y.com"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	records, err := Load(path, ",")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Load returned %d records; want 1", len(records))
	}
	if !reflect.DeepEqual(records[0].Emails, []string{"a@x.com", "b@y.com"}) {
		t.Errorf("emails = %v", records[0].Emails)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"No id", []string{"key", "contact email"}},
		{"No contact email", []string{"id", "email"}},
		{"Wrong case", []string{"ID", "Contact Email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, [][]string{tt.headers, {"42", "a@x.com"}})

			_, err := Load(path, ";")
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("Load error = %v; want ErrMissingColumn", err)
			}
		})
	}
}

func TestLoadUnreadable(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), ";"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("id,contact email\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, ";"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadShortRows(t *testing.T) {
	// Rows shorter than the header must not panic; a missing email cell is
	// zero emails.
	path := writeCSV(t, [][]string{
		{"name", "id", "contact email"},
		{"Alice", "42"},
	})

	records, err := Load(path, ";")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "42" || len(records[0].Emails) != 0 {
		t.Errorf("records = %+v; want one record, id 42, no emails", records)
	}
}
