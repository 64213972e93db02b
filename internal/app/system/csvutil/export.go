// Package csvutil writes CSV exports that are safe to open in spreadsheets.
package csvutil

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/dalemusser/readinglog/internal/app/system/limits"
)

// MaxRows bounds a single export.
const MaxRows = limits.MaxExportRows

// SafeCell neutralises values a spreadsheet would evaluate as a formula by
// prefixing them with a single quote.
func SafeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Writer wraps csv.Writer, applying SafeCell to every field and counting rows.
type Writer struct {
	cw   *csv.Writer
	rows int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// Header writes the column names as given.
func (w *Writer) Header(cols ...string) error {
	return w.cw.Write(cols)
}

// Row writes one record. It returns ErrTooManyRows past MaxRows.
func (w *Writer) Row(fields ...string) error {
	if w.rows >= MaxRows {
		return ErrTooManyRows
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = SafeCell(strings.ReplaceAll(f, "\r\n", "\n"))
	}
	w.rows++
	return w.cw.Write(out)
}

// Rows reports how many records have been written, excluding the header.
func (w *Writer) Rows() int { return w.rows }

// Flush writes buffered data and returns any write error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

type csvError string

func (e csvError) Error() string { return string(e) }

const ErrTooManyRows = csvError("csv export exceeds row limit")
