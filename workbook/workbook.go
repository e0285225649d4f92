// Package workbook reads spreadsheets (local .xlsx and .tsv files or Google Sheets)
// into cell grids, picks the sheet holding the file name/description table and
// indexes its rows by canonical file name.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnreadable marks a spreadsheet that could not be opened or parsed. It is
// reported through Diagnostics and never aborts a load.
var ErrUnreadable = errors.New("workbook unreadable")

var googleSheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// Sheet is a rectangular grid of cells addressed with 1-based row/column
// numbers. Value is the raw value channel, Text the formatted display text.
type Sheet interface {
	Name() string
	Bounds() (Range, bool)
	Value(row, col int) string
	Text(row, col int) string
}

// Range is the used range of a sheet, inclusive and 1-based.
type Range struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

func (r Range) String() string {
	return fmt.Sprintf("R%v-R%v, C%v-C%v", r.Top, r.Bottom, r.Left, r.Right)
}

type Workbook struct {
	Source string
	Sheets []Sheet
}

type Cell struct {
	Value string
	Text  string
}

// Grid is an in-memory Sheet. Cells[0][0] is the cell at (Top, Left).
type Grid struct {
	Title string
	Top   int
	Left  int
	Cells [][]Cell
}

// NewGrid builds a grid anchored at A1 from plain strings, using the same
// string for both value channels.
func NewGrid(title string, rows ...[]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = Cell{Value: v, Text: v}
		}
	}

	return newGrid(title, 1, 1, cells)
}

func (g *Grid) Name() string {
	return g.Title
}

func (g *Grid) Bounds() (Range, bool) {
	width := 0
	for _, row := range g.Cells {
		if len(row) > width {
			width = len(row)
		}
	}

	if len(g.Cells) == 0 || width == 0 {
		return Range{}, false
	}

	return Range{
		Top:    g.Top,
		Bottom: g.Top + len(g.Cells) - 1,
		Left:   g.Left,
		Right:  g.Left + width - 1,
	}, true
}

func (g *Grid) Value(row, col int) string {
	if c := g.cell(row, col); c != nil {
		return c.Value
	}

	return ""
}

func (g *Grid) Text(row, col int) string {
	if c := g.cell(row, col); c != nil {
		return c.Text
	}

	return ""
}

func (g *Grid) cell(row, col int) *Cell {
	r := row - g.Top
	c := col - g.Left

	if r < 0 || r >= len(g.Cells) || c < 0 || c >= len(g.Cells[r]) {
		return nil
	}

	return &g.Cells[r][c]
}

// newGrid trims the empty rows and columns surrounding the data so that the
// grid covers the used range only.
func newGrid(title string, top, left int, cells [][]Cell) *Grid {
	empty := func(c Cell) bool { return c.Value == "" && c.Text == "" }

	first, last := -1, -1
	minCol, maxCol := -1, -1
	for i, row := range cells {
		for j, c := range row {
			if empty(c) {
				continue
			}

			if first < 0 {
				first = i
			}
			last = i

			if minCol < 0 || j < minCol {
				minCol = j
			}

			if j > maxCol {
				maxCol = j
			}
		}
	}

	if first < 0 {
		return &Grid{Title: title, Top: top, Left: left}
	}

	trimmed := make([][]Cell, 0, last-first+1)
	for _, row := range cells[first : last+1] {
		r := make([]Cell, maxCol-minCol+1)
		for j := minCol; j <= maxCol && j < len(row); j++ {
			r[j-minCol] = row[j]
		}
		trimmed = append(trimmed, r)
	}

	return &Grid{
		Title: title,
		Top:   top + first,
		Left:  left + minCol,
		Cells: trimmed,
	}
}

// read returns the cell value, falling back to the formatted text when the
// value channel is absent or blank.
func read(s Sheet, row, col int) string {
	if v := s.Value(row, col); strings.TrimSpace(v) != "" {
		return v
	}

	return s.Text(row, col)
}

type options struct {
	client *http.Client
}

type Option func(*options)

// WithGoogleClient sets the authorised HTTP client used for Google Sheets URLs.
func WithGoogleClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// Open reads a workbook from a local .xlsx/.xlsm/.tsv file or a Google Sheets URL.
func Open(ctx context.Context, path string, opts ...Option) (*Workbook, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	path = strings.TrimSpace(path)

	if googleSheetURL.MatchString(path) {
		if o.client == nil {
			return nil, fmt.Errorf("%w: Google Sheets URL requires authorised credentials", ErrUnreadable)
		}

		return OpenGoogleSheet(ctx, o.client, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path)

	case ".tsv", ".txt":
		return OpenTSV(path)

	default:
		return nil, fmt.Errorf("%w: unsupported spreadsheet format '%s'", ErrUnreadable, filepath.Ext(path))
	}
}
