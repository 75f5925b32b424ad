package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Columns lists the CSV headers every catalog export must carry.
var Columns = []string{"BGGId", "Name", "YearPublished", "GameWeight", "AvgRating", "ImagePath"}

// ParseCSV reads a catalog export. Extra columns are ignored; a missing
// required column is an error. Rows with an unparseable id are dropped.
func ParseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog csv: empty input")
		}
		return nil, fmt.Errorf("catalog csv: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	cols := make([]int, len(Columns))
	for i, name := range Columns {
		pos, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("catalog csv: missing column %q", name)
		}
		cols[i] = pos
	}

	var entries []Entry
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("catalog csv: line %d: %w", line, err)
		}
		cell := func(col int) string {
			pos := cols[col]
			if pos >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[pos])
		}
		id, ok := parseInt(cell(0))
		if !ok {
			continue
		}
		entry := Entry{
			ID:        *id,
			Name:      cell(1),
			ImagePath: cell(5),
		}
		entry.YearPublished, _ = parseInt(cell(2))
		entry.ComplexityWeight = parseFloat(cell(3))
		entry.AverageRating = parseFloat(cell(4))
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseInt accepts "1995" as well as the "1995.0" form that spreadsheet
// exports produce for integer columns with gaps.
func parseInt(value string) (*int, bool) {
	if value == "" || strings.EqualFold(value, "nan") {
		return nil, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return &n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return nil, false
	}
	n := int(f)
	return &n, true
}

func parseFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// WriteCSV writes entries with the standard header. Absent values become
// empty cells.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{strconv.Itoa(e.ID), e.Name, "", "", "", e.ImagePath}
		if e.YearPublished != nil {
			record[2] = strconv.Itoa(*e.YearPublished)
		}
		if e.ComplexityWeight != nil {
			record[3] = strconv.FormatFloat(*e.ComplexityWeight, 'f', -1, 64)
		}
		if e.AverageRating != nil {
			record[4] = strconv.FormatFloat(*e.AverageRating, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
