package format

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// DefaultColumns is the column order used when a caller does not choose a
// subset (§6).
var DefaultColumns = []string{
	"INPUT", "LATITUDE", "LONGITUDE", "PREFECTURE", "CITY",
	"LG_CODE", "TOWN", "TOWN_ID", "OTHER", "BLOCK", "BLOCK_ID",
}

var numericColumns = map[string]bool{"LATITUDE": true, "LONGITUDE": true}

// CSVFormatter writes one row per Query: string cells double-quoted,
// numeric cells bare (§6). encoding/csv quotes a field only when its
// content demands it, which is the wrong rule here — the quoting is
// driven by column type, not by what a given value happens to contain —
// so rows are assembled by hand over a bufio.Writer instead (see
// DESIGN.md).
type CSVFormatter struct {
	mu      sync.Mutex
	w       *bufio.Writer
	columns []string
	wrote   bool
	noHdr   bool
}

// NewCSVFormatter wraps w. columns selects and orders the output column
// subset from DefaultColumns; a nil slice uses DefaultColumns. Set
// suppressHeader to skip writing the header row.
func NewCSVFormatter(w io.Writer, columns []string, suppressHeader bool) *CSVFormatter {
	if columns == nil {
		columns = DefaultColumns
	}
	return &CSVFormatter{w: bufio.NewWriter(w), columns: columns, noHdr: suppressHeader}
}

func (f *CSVFormatter) Write(q *addr.Query) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.wrote {
		f.wrote = true
		if !f.noHdr {
			if _, err := f.w.WriteString(strings.Join(f.columns, ",") + "\n"); err != nil {
				return err
			}
		}
	}

	rec := NewRecord(q)
	cells := make([]string, len(f.columns))
	for i, col := range f.columns {
		cells[i] = cell(rec, col)
	}
	if _, err := f.w.WriteString(strings.Join(cells, ",") + "\n"); err != nil {
		return err
	}
	return f.w.Flush()
}

func cell(rec Record, column string) string {
	if numericColumns[column] {
		return floatCell(rec, column)
	}
	return quote(stringCell(rec, column))
}

func stringCell(rec Record, column string) string {
	switch column {
	case "INPUT":
		return rec.Input
	case "PREFECTURE":
		return rec.Pref
	case "CITY":
		return rec.City
	case "LG_CODE":
		return rec.LGCode
	case "TOWN":
		return rec.Town
	case "TOWN_ID":
		return rec.TownID
	case "OTHER":
		return rec.Other
	case "BLOCK":
		return rec.Block
	case "BLOCK_ID":
		return rec.BlockID
	default:
		return ""
	}
}

func floatCell(rec Record, column string) string {
	var v *float64
	if column == "LATITUDE" {
		v = rec.Lat
	} else {
		v = rec.Lon
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
