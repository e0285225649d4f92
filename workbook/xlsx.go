package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// OpenXLSX reads every worksheet of an Excel workbook. The raw cell values feed
// the value channel and the number-formatted values feed the text channel.
// Worksheets that cannot be read are kept as empty sheets so that selection
// skips them.
func OpenXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open %v (%v)", ErrUnreadable, path, err)
	}

	defer f.Close()

	wb := Workbook{
		Source: path,
		Sheets: []Sheet{},
	}

	for _, name := range f.GetSheetList() {
		raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			wb.Sheets = append(wb.Sheets, &Grid{Title: name, Top: 1, Left: 1})
			continue
		}

		formatted, err := f.GetRows(name)
		if err != nil {
			formatted = [][]string{}
		}

		wb.Sheets = append(wb.Sheets, newGrid(name, 1, 1, merge(raw, formatted)))
	}

	return &wb, nil
}

func merge(values, text [][]string) [][]Cell {
	height := max(len(values), len(text))
	cells := make([][]Cell, height)

	at := func(rows [][]string, r, c int) string {
		if r < len(rows) && c < len(rows[r]) {
			return rows[r][c]
		}

		return ""
	}

	for r := 0; r < height; r++ {
		width := 0
		if r < len(values) {
			width = len(values[r])
		}

		if r < len(text) && len(text[r]) > width {
			width = len(text[r])
		}

		cells[r] = make([]Cell, width)
		for c := 0; c < width; c++ {
			cells[r][c] = Cell{
				Value: at(values, r, c),
				Text:  at(text, r, c),
			}
		}
	}

	return cells
}
