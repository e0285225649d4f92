package workbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestOpenXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", "Title block")

	if _, err := f.NewSheet("Descriptions"); err != nil {
		t.Fatalf("Unexpected error creating sheet (%v)", err)
	}

	f.SetCellValue("Descriptions", "B2", "File")
	f.SetCellValue("Descriptions", "C2", "Description")
	f.SetCellValue("Descriptions", "B3", "Plan-A1.dwg")
	f.SetCellValue("Descriptions", "C3", "First floor plan")
	f.SetCellValue("Descriptions", "B4", "Section B.pdf")
	f.SetCellValue("Descriptions", "C4", "Cross section")
	f.SetCellValue("Descriptions", "B5", 1001)
	f.SetCellValue("Descriptions", "C5", 42)

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Unexpected error saving %v (%v)", path, err)
	}

	wb, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("Unexpected error opening %v (%v)", path, err)
	}

	if len(wb.Sheets) != 2 {
		t.Fatalf("Expected 2 sheets, got %v", len(wb.Sheets))
	}

	index, diagnostics := Index(wb)

	if diagnostics.Sheet != "Descriptions" {
		t.Errorf("Incorrect sheet selected - expected 'Descriptions', got %q", diagnostics.Sheet)
	}

	expected := Range{Top: 2, Bottom: 5, Left: 2, Right: 3}
	if diagnostics.Range != expected {
		t.Errorf("Incorrect range\n   expected: %v\n   got:      %v", expected, diagnostics.Range)
	}

	if row, ok := index.Get("section b"); !ok || row.Description != "Cross section" {
		t.Errorf("Incorrect row for 'section b': %+v", row)
	}

	if row, ok := index.Get("1001"); !ok || row.Description != "42" {
		t.Errorf("Incorrect row for numeric file name: %+v", row)
	}
}

func TestLoadXLSXWithInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := writeFile(path, "not a zip file"); err != nil {
		t.Fatalf("%v", err)
	}

	index, diagnostics := Load(context.Background(), path)
	if index.Len() != 0 || diagnostics.Err == nil {
		t.Errorf("Expected empty index with error, got %v rows, error %v", index.Len(), diagnostics.Err)
	}
}
