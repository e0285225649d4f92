package workbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wwp-bim/acc-docs-sync/keys"
)

const (
	MaxSamples = 5
	MaxLogRows = 20
)

type Row struct {
	FileName    string
	Description string
}

// RowIndex maps canonical keys to spreadsheet rows. The first row registered
// under a key keeps it.
type RowIndex struct {
	index map[string]*Row
	keys  []string
	rows  []*Row
}

func NewRowIndex() *RowIndex {
	return &RowIndex{
		index: map[string]*Row{},
	}
}

// Add registers a row under both its full and extension-less canonical keys.
func (x *RowIndex) Add(row Row) {
	r := &row

	x.rows = append(x.rows, r)
	x.register(keys.Normalize(row.FileName), r)
	x.register(keys.NormalizeBase(row.FileName), r)
}

func (x *RowIndex) register(key string, row *Row) {
	if key == "" {
		return
	}

	if _, ok := x.index[key]; !ok {
		x.index[key] = row
		x.keys = append(x.keys, key)
	}
}

func (x *RowIndex) Get(key string) (*Row, bool) {
	if x == nil {
		return nil, false
	}

	row, ok := x.index[key]

	return row, ok
}

// Len returns the number of rows added, including rows whose keys were
// already taken.
func (x *RowIndex) Len() int {
	if x == nil {
		return 0
	}

	return len(x.rows)
}

// Keys returns the registered keys in registration order.
func (x *RowIndex) Keys() []string {
	if x == nil {
		return nil
	}

	return append([]string{}, x.keys...)
}

// Rows returns the rows in spreadsheet order.
func (x *RowIndex) Rows() []Row {
	if x == nil {
		return nil
	}

	rows := make([]Row, 0, len(x.rows))
	for _, r := range x.rows {
		rows = append(rows, *r)
	}

	return rows
}

// Diagnostics describes how a spreadsheet was read. It is informational only.
type Diagnostics struct {
	Source            string
	Sheet             string
	Range             Range
	HasRange          bool
	Scores            []Score
	SheetRows         int
	SheetDescRows     int
	Headers           []string
	DescriptionColumn int
	RowsRead          int
	Samples           []Row
	Rows              []Row
	Err               error
}

// Lines formats the diagnostics for the operator log.
func (d *Diagnostics) Lines() []string {
	if d == nil {
		return nil
	}

	lines := []string{}

	if d.Err != nil {
		lines = append(lines, fmt.Sprintf("Workbook %v could not be read (%v)", d.Source, d.Err))
	}

	for _, s := range d.Scores {
		if s.Skipped {
			lines = append(lines, fmt.Sprintf("Sheet %q: no data", s.Sheet))
		} else {
			lines = append(lines, fmt.Sprintf("Sheet %q: rows=%v desc_rows=%v", s.Sheet, s.Rows, s.DescRows))
		}
	}

	if !d.HasRange {
		lines = append(lines, "No sheet with usable data")
		return lines
	}

	lines = append(lines, fmt.Sprintf("Range %v, desc_col=%v, rows=%v", d.Range, d.DescriptionColumn, d.RowsRead))
	lines = append(lines, fmt.Sprintf("Sheet: %v (rows=%v, desc_rows=%v)", d.Sheet, d.SheetRows, d.SheetDescRows))

	if len(d.Headers) > 0 {
		lines = append(lines, fmt.Sprintf("Headers (row %v): %v", d.Range.Top, strings.Join(d.Headers, ", ")))
	}

	for i, s := range d.Samples {
		lines = append(lines, fmt.Sprintf("Sample %v: file='%v' desc='%v'", i+1, s.FileName, s.Description))
	}

	if len(d.Rows) > 0 {
		lines = append(lines, fmt.Sprintf("Rows (A,B): showing up to %v", len(d.Rows)))
	}

	for i, r := range d.Rows {
		lines = append(lines, fmt.Sprintf("Row %v: file='%v' desc='%v'", i+1, r.FileName, r.Description))
	}

	return lines
}

// Build indexes the selected sheet. File names come from the first column of
// the used range and descriptions always from the second, whatever the header
// row says. A nil selection yields an empty index.
func Build(selection *Selection) (*RowIndex, *Diagnostics) {
	index := NewRowIndex()
	diagnostics := Diagnostics{}

	if selection == nil || selection.Sheet == nil {
		return index, &diagnostics
	}

	sheet := selection.Sheet
	bounds := selection.Range

	diagnostics.Sheet = sheet.Name()
	diagnostics.Range = bounds
	diagnostics.HasRange = true
	diagnostics.SheetRows = selection.Rows
	diagnostics.SheetDescRows = selection.DescRows

	// ... header row (diagnostics only)
	seen := map[string]bool{}
	for col := bounds.Left; col <= bounds.Right; col++ {
		if h := keys.Normalize(read(sheet, bounds.Top, col)); h != "" && !seen[h] {
			seen[h] = true
			diagnostics.Headers = append(diagnostics.Headers, h)
		}
	}

	description := 0
	if bounds.Left+1 <= bounds.Right {
		description = bounds.Left + 1
	}

	diagnostics.DescriptionColumn = description

	// ... data rows
	for r := bounds.Top + 1; r <= bounds.Bottom; r++ {
		file := strings.TrimSpace(read(sheet, r, bounds.Left))
		if file == "" {
			continue
		}

		desc := ""
		if description > 0 {
			desc = strings.TrimSpace(read(sheet, r, description))
		}

		if len(diagnostics.Samples) < MaxSamples {
			raw := ""
			if description > 0 {
				raw = sheet.Value(r, description)
			}

			diagnostics.Samples = append(diagnostics.Samples, Row{FileName: file, Description: raw})
		}

		index.Add(Row{FileName: file, Description: desc})
		diagnostics.RowsRead++

		if len(diagnostics.Rows) < MaxLogRows {
			diagnostics.Rows = append(diagnostics.Rows, Row{FileName: file, Description: desc})
		}
	}

	return index, &diagnostics
}

// Index selects the table sheet of a workbook and indexes it.
func Index(wb *Workbook) (*RowIndex, *Diagnostics) {
	if wb == nil {
		return NewRowIndex(), &Diagnostics{}
	}

	selection, scores := Select(wb.Sheets)
	index, diagnostics := Build(selection)

	diagnostics.Source = wb.Source
	diagnostics.Scores = scores

	return index, diagnostics
}

// Load opens and indexes a spreadsheet. It never fails: an unreadable source
// yields an empty index with the error recorded in the diagnostics.
func Load(ctx context.Context, path string, opts ...Option) (*RowIndex, *Diagnostics) {
	wb, err := Open(ctx, path, opts...)
	if err != nil {
		if !errors.Is(err, ErrUnreadable) {
			err = fmt.Errorf("%w (%v)", ErrUnreadable, err)
		}

		return NewRowIndex(), &Diagnostics{Source: path, Err: err}
	}

	return Index(wb)
}
