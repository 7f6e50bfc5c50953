package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// Format is an output file type.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

var (
	// ErrNoData is returned when there is nothing to export.
	ErrNoData = errors.New("no data to export")
	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown export format")
)

// ParseFormat accepts csv, xlsx (or excel) and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Dataset is a ready-to-render table. Build one with Products, Sales or
// Purchases.
type Dataset struct {
	Name  string
	Title string

	rows    any
	count   int
	numeric []string
}

func (d Dataset) Len() int { return d.count }

// Filename is the download name for format f.
func (d Dataset) Filename(f Format) string {
	return d.Name + "." + string(f)
}

// table returns the header and the records exactly as the CSV export
// would write them.
func (d Dataset) table() ([]string, [][]string, error) {
	raw, err := gocsv.MarshalBytes(d.rows)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal %s: %w", d.Name, err)
	}
	all, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read back %s: %w", d.Name, err)
	}
	if len(all) == 0 {
		return nil, nil, ErrNoData
	}
	return all[0], all[1:], nil
}

func (d Dataset) isNumeric(column string) bool {
	return slices.Contains(d.numeric, column)
}

// Render writes d in format f. generatedAt is stamped on printable output.
func Render(w io.Writer, d Dataset, f Format, generatedAt time.Time) error {
	if d.count == 0 {
		return ErrNoData
	}
	switch f {
	case CSV:
		return gocsv.Marshal(d.rows, w)
	case XLSX:
		return renderXLSX(w, d)
	case PDF:
		return renderPDF(w, d, generatedAt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
