package ooxml

import (
	"fmt"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
	"github.com/CLangCodes/Excel-Helper/internal/sheetdata"
)

// Worksheet is a loaded worksheet part.
type Worksheet struct {
	entry *sheetEntry
	part  string

	data      []byte
	dimension *span
	sheetData span
	rows      sheetdata.SheetData
	dirty     bool
}

func parseWorksheet(part string, data []byte, entry *sheetEntry) (*Worksheet, error) {
	ws := &Worksheet{entry: entry, part: part, data: data}
	found, err := decodeChildren(part, data, map[string]any{"dimension": nil, "sheetData": &ws.rows})
	if err != nil {
		return nil, err
	}
	if err := ws.setSpans(found); err != nil {
		return nil, err
	}
	return ws, nil
}

// index locates the spliced elements again after data was rewritten.
func (w *Worksheet) index() error {
	found, err := decodeChildren(w.part, w.data, map[string]any{"dimension": nil, "sheetData": nil})
	if err != nil {
		return err
	}
	return w.setSpans(found)
}

func (w *Worksheet) setSpans(found map[string]span) error {
	s, ok := found["sheetData"]
	if !ok {
		return fmt.Errorf("%w: %s has no sheetData element", ErrMalformedPart, w.part)
	}
	w.sheetData = s
	w.dimension = nil
	if d, ok := found["dimension"]; ok && d.end <= s.start {
		w.dimension = &d
	}
	return nil
}

// encode rewrites the part with the current rows. The dimension element, when
// present, is updated to the used range.
func (w *Worksheet) encode() ([]byte, error) {
	sheetData, err := encodeElement("sheetData", &w.rows)
	if err != nil {
		return nil, err
	}
	if w.dimension == nil {
		return splice(w.data, []span{w.sheetData}, [][]byte{sheetData}), nil
	}
	dimension := []byte(`<dimension ref="` + w.rows.Dimension() + `"/>`)
	return splice(w.data, []span{*w.dimension, w.sheetData}, [][]byte{dimension, sheetData}), nil
}

// Name returns the sheet name.
func (w *Worksheet) Name() string {
	return w.entry.Name
}

// SheetID returns the workbook-wide sheet id.
func (w *Worksheet) SheetID() int {
	return w.entry.SheetID
}

// Rows returns the rows in ascending order. Change them through
// FindOrInsertCell or AppendRow so the next Save rewrites the worksheet.
func (w *Worksheet) Rows() []*sheetdata.Row {
	return w.rows.Rows
}

// AppendRow adds a row after the last one.
func (w *Worksheet) AppendRow(row *sheetdata.Row) error {
	if err := w.rows.AppendRow(row); err != nil {
		return err
	}
	w.dirty = true
	return nil
}

// Dimension returns the used range computed from the rows.
func (w *Worksheet) Dimension() string {
	return w.rows.Dimension()
}

// Cell returns the cell at address, if present.
func (w *Worksheet) Cell(address string) (*sheetdata.Cell, bool, error) {
	a, err := cellref.Parse(address)
	if err != nil {
		return nil, false, err
	}
	r, ok := w.rows.FindRow(a.Row)
	if !ok {
		return nil, false, nil
	}
	return r.Find(address)
}

// FindOrInsertCell returns the cell at address, adding its row and the cell
// itself in order when absent.
func (w *Worksheet) FindOrInsertCell(address string) (*sheetdata.Cell, error) {
	a, err := cellref.Parse(address)
	if err != nil {
		return nil, err
	}
	r, err := w.rows.FindOrInsertRow(a.Row)
	if err != nil {
		return nil, err
	}
	cell, err := r.FindOrInsert(address)
	if err != nil {
		return nil, err
	}
	w.dirty = true
	return cell, nil
}
