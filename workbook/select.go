package workbook

import (
	"strings"
)

// Score records how much file name/description data a sheet appears to hold.
type Score struct {
	Sheet    string
	Rows     int
	DescRows int
	Skipped  bool
}

type Selection struct {
	Sheet    Sheet
	Range    Range
	Rows     int
	DescRows int
}

// Select picks the sheet most likely to hold the (file name, description) table:
// the most non-empty column B data rows, then the most non-empty column A data
// rows, then the first sheet seen. Sheets without a used range are skipped and a
// nil Selection means no sheet has data.
func Select(sheets []Sheet) (*Selection, []Score) {
	var best *Selection

	scores := []Score{}
	for _, sheet := range sheets {
		bounds, ok := sheet.Bounds()
		if !ok || bounds.Bottom < bounds.Top || bounds.Right < bounds.Left {
			scores = append(scores, Score{Sheet: sheet.Name(), Skipped: true})
			continue
		}

		rows, desc := score(sheet, bounds)
		scores = append(scores, Score{Sheet: sheet.Name(), Rows: rows, DescRows: desc})

		switch {
		case best == nil,
			desc > best.DescRows,
			desc == best.DescRows && rows > best.Rows:
			best = &Selection{
				Sheet:    sheet,
				Range:    bounds,
				Rows:     rows,
				DescRows: desc,
			}
		}
	}

	return best, scores
}

func score(sheet Sheet, bounds Range) (int, int) {
	rows := 0
	desc := 0

	for r := bounds.Top + 1; r <= bounds.Bottom; r++ {
		if strings.TrimSpace(read(sheet, r, bounds.Left)) != "" {
			rows++
		}

		if bounds.Left+1 <= bounds.Right {
			if strings.TrimSpace(read(sheet, r, bounds.Left+1)) != "" {
				desc++
			}
		}
	}

	return rows, desc
}
