package workbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OpenTSV reads a tab separated file as a single sheet workbook.
func OpenTSV(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open %v (%v)", ErrUnreadable, path, err)
	}

	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sheet, err := ReadTSV(f, name)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid TSV file %v (%v)", ErrUnreadable, path, err)
	}

	return &Workbook{
		Source: path,
		Sheets: []Sheet{sheet},
	}, nil
}

func ReadTSV(f io.Reader, name string) (*Grid, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	cells := make([][]Cell, len(records))
	for i, record := range records {
		cells[i] = make([]Cell, len(record))
		for j, v := range record {
			cells[i][j] = Cell{Value: v, Text: v}
		}
	}

	return newGrid(name, 1, 1, cells), nil
}

// WriteTSV writes the file name/description table in TSV format with a header row.
func WriteTSV(f io.Writer, rows []Row) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write([]string{"File Name", "Description"}); err != nil {
		return err
	}

	for _, row := range rows {
		if err := w.Write([]string{clean(row.FileName), clean(row.Description)}); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func clean(v string) string {
	return strings.TrimSpace(strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(v))
}
