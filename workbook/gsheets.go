package workbook

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// OpenGoogleSheet fetches every sheet of a Google Sheets spreadsheet with its
// grid data. Effective values feed the value channel and formatted values the
// text channel.
func OpenGoogleSheet(ctx context.Context, client *http.Client, url string) (*Workbook, error) {
	match := googleSheetURL.FindStringSubmatch(strings.TrimSpace(url))
	if len(match) < 2 {
		return nil, fmt.Errorf("%w: invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'", ErrUnreadable)
	}

	return openGoogleSheet(ctx, match[1], url, option.WithHTTPClient(client))
}

func openGoogleSheet(ctx context.Context, id, source string, opts ...option.ClientOption) (*Workbook, error) {
	google, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to create new Sheets client (%v)", ErrUnreadable, err)
	}

	spreadsheet, err := google.Spreadsheets.Get(id).IncludeGridData(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch spreadsheet (%v)", ErrUnreadable, err)
	}

	wb := Workbook{
		Source: source,
		Sheets: []Sheet{},
	}

	for _, sheet := range spreadsheet.Sheets {
		title := ""
		if sheet.Properties != nil {
			title = sheet.Properties.Title
		}

		if len(sheet.Data) == 0 || sheet.Data[0] == nil {
			wb.Sheets = append(wb.Sheets, &Grid{Title: title, Top: 1, Left: 1})
			continue
		}

		data := sheet.Data[0]
		cells := make([][]Cell, len(data.RowData))
		for i, row := range data.RowData {
			if row == nil {
				continue
			}

			cells[i] = make([]Cell, len(row.Values))
			for j, v := range row.Values {
				if v != nil {
					cells[i][j] = Cell{
						Value: effective(v.EffectiveValue),
						Text:  v.FormattedValue,
					}
				}
			}
		}

		wb.Sheets = append(wb.Sheets, newGrid(title, int(data.StartRow)+1, int(data.StartColumn)+1, cells))
	}

	return &wb, nil
}

func effective(v *sheets.ExtendedValue) string {
	switch {
	case v == nil:
		return ""

	case v.StringValue != nil:
		return *v.StringValue

	case v.NumberValue != nil:
		return strconv.FormatFloat(*v.NumberValue, 'f', -1, 64)

	case v.BoolValue != nil:
		return strconv.FormatBool(*v.BoolValue)

	default:
		return ""
	}
}
