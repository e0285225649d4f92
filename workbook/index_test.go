package workbook

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	sheet := NewGrid("Files",
		[]string{"Name", "Notes", "Status"},
		[]string{"Plan-A1.dwg", "First floor plan", "ok"},
		[]string{"", "orphan description", ""},
		[]string{"Section B.pdf", "", ""},
		[]string{"plan-a1.DWG", "Duplicate", ""},
	)

	selection, _ := Select([]Sheet{sheet})
	index, diagnostics := Build(selection)

	for _, key := range []string{"plan-a1.dwg", "plan-a1"} {
		row, ok := index.Get(key)
		if !ok {
			t.Fatalf("Expected row for key %q", key)
		}

		expected := Row{FileName: "Plan-A1.dwg", Description: "First floor plan"}
		if *row != expected {
			t.Errorf("Incorrect row for key %q\n   expected: %+v\n   got:      %+v", key, expected, *row)
		}
	}

	if row, ok := index.Get("section b"); !ok || row.Description != "" {
		t.Errorf("Incorrect row for 'section b': %+v", row)
	}

	if index.Len() != 3 {
		t.Errorf("Incorrect row count - expected 3, got %v", index.Len())
	}

	expected := []string{"plan-a1.dwg", "plan-a1", "section b.pdf", "section b"}
	if !reflect.DeepEqual(index.Keys(), expected) {
		t.Errorf("Incorrect keys\n   expected: %v\n   got:      %v", expected, index.Keys())
	}

	if !reflect.DeepEqual(diagnostics.Headers, []string{"name", "notes", "status"}) {
		t.Errorf("Incorrect headers: %v", diagnostics.Headers)
	}

	if diagnostics.DescriptionColumn != 2 || diagnostics.RowsRead != 3 {
		t.Errorf("Incorrect diagnostics - desc_col:%v rows:%v", diagnostics.DescriptionColumn, diagnostics.RowsRead)
	}

	if diagnostics.Range != (Range{Top: 1, Bottom: 5, Left: 1, Right: 3}) {
		t.Errorf("Incorrect range: %v", diagnostics.Range)
	}
}

func TestBuildIgnoresHeaderText(t *testing.T) {
	sheet := NewGrid("Files",
		[]string{"Description", "File Name"},
		[]string{"A-101.pdf", "Ground floor"},
	)

	selection, _ := Select([]Sheet{sheet})
	index, _ := Build(selection)

	row, ok := index.Get("a-101.pdf")
	if !ok || row.Description != "Ground floor" {
		t.Errorf("Expected description from second column, got %+v", row)
	}
}

func TestBuildWithOffsetRange(t *testing.T) {
	sheet := &Grid{
		Title: "Offset",
		Top:   3,
		Left:  2,
		Cells: [][]Cell{
			{{Value: "File"}, {Value: "Description"}},
			{{Value: "X-1.rvt"}, {Value: "", Text: "Model"}},
		},
	}

	selection, _ := Select([]Sheet{sheet})
	index, diagnostics := Build(selection)

	if row, ok := index.Get("x-1"); !ok || row.Description != "Model" {
		t.Errorf("Expected row from offset range, got %+v", row)
	}

	if diagnostics.DescriptionColumn != 3 {
		t.Errorf("Incorrect description column - expected 3, got %v", diagnostics.DescriptionColumn)
	}

	if diagnostics.Samples[0].Description != "" {
		t.Errorf("Expected raw sample value, got %q", diagnostics.Samples[0].Description)
	}
}

func TestBuildLimitsDiagnostics(t *testing.T) {
	data := [][]string{{"File", "Description"}}
	for i := 0; i < 30; i++ {
		data = append(data, []string{fmt.Sprintf("F-%02d.pdf", i), "desc"})
	}

	selection, _ := Select([]Sheet{NewGrid("Many", data...)})
	index, diagnostics := Build(selection)

	if index.Len() != 30 {
		t.Errorf("Expected 30 rows, got %v", index.Len())
	}

	if len(diagnostics.Samples) != MaxSamples {
		t.Errorf("Expected %v samples, got %v", MaxSamples, len(diagnostics.Samples))
	}

	if len(diagnostics.Rows) != MaxLogRows {
		t.Errorf("Expected %v logged rows, got %v", MaxLogRows, len(diagnostics.Rows))
	}

	if len(diagnostics.Lines()) == 0 {
		t.Errorf("Expected diagnostic lines")
	}
}

func TestRowIndexFirstRegistrationWins(t *testing.T) {
	index := NewRowIndex()

	index.Add(Row{FileName: "Plan-A1.dwg", Description: "First floor plan"})
	index.Add(Row{FileName: "PLAN-A1.dwg", Description: "Later duplicate"})
	index.Add(Row{FileName: "Plan-A1.pdf", Description: "PDF print"})

	if row, _ := index.Get("plan-a1.dwg"); row.Description != "First floor plan" {
		t.Errorf("Expected first registration to win, got %+v", row)
	}

	if row, _ := index.Get("plan-a1"); row.Description != "First floor plan" {
		t.Errorf("Expected first registration to win for base key, got %+v", row)
	}

	if row, _ := index.Get("plan-a1.pdf"); row.Description != "PDF print" {
		t.Errorf("Expected PDF row, got %+v", row)
	}
}

func TestLoadWithUnreadableWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.xlsx")

	index, diagnostics := Load(context.Background(), path)
	if index == nil || index.Len() != 0 {
		t.Fatalf("Expected empty index, got %v", index)
	}

	if !errors.Is(diagnostics.Err, ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable, got %v", diagnostics.Err)
	}
}

func TestLoadWithUnsupportedFormat(t *testing.T) {
	_, diagnostics := Load(context.Background(), "descriptions.ods")
	if !errors.Is(diagnostics.Err, ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable, got %v", diagnostics.Err)
	}
}

func TestLoadGoogleSheetWithoutCredentials(t *testing.T) {
	_, diagnostics := Load(context.Background(), "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit")
	if !errors.Is(diagnostics.Err, ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable, got %v", diagnostics.Err)
	}
}
