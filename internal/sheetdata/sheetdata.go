// Package sheetdata models the rows and cells of a worksheet's sheetData
// element and keeps them ordered: rows by row number, cells by column.
package sheetdata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
	"github.com/CLangCodes/Excel-Helper/internal/sharedstrings"
)

// ErrRowOutOfOrder is returned when appending a row that would break the
// ascending row order.
var ErrRowOutOfOrder = errors.New("row out of order")

// Attrs keeps attributes that have no field of their own. Namespace
// declarations are dropped on decode; the encoder declares the prefixes it
// uses itself.
type Attrs []xml.Attr

// UnmarshalXMLAttr implements xml.UnmarshalerAttr.
func (a *Attrs) UnmarshalXMLAttr(attr xml.Attr) error {
	if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
		return nil
	}
	*a = append(*a, attr)
	return nil
}

// SheetData maps the sheetData element.
type SheetData struct {
	Rows []*Row `xml:"row"`
}

// Row maps a row element. Cells are kept in ascending column order.
type Row struct {
	// R is the 1-based row number. Zero means it is implied by position.
	R     int     `xml:"r,attr,omitempty"`
	Cells []*Cell `xml:"c"`
	Attrs Attrs   `xml:",any,attr"`
}

// Find returns the cell at address, if present.
func (r *Row) Find(address string) (*Cell, bool, error) {
	target, err := cellref.Parse(address)
	if err != nil {
		return nil, false, err
	}
	if err := r.normalize(); err != nil {
		return nil, false, err
	}
	for _, c := range r.Cells {
		if c.addr == target {
			return c, true, nil
		}
	}
	return nil, false, nil
}

// FindOrInsert returns the cell at address, creating it when absent. A new
// cell is placed before the first cell that sorts after it, so the row stays
// in ascending column order; calling it twice with one address returns the
// same cell and leaves the row unchanged.
func (r *Row) FindOrInsert(address string) (*Cell, error) {
	target, err := cellref.Parse(address)
	if err != nil {
		return nil, err
	}
	if err := r.normalize(); err != nil {
		return nil, err
	}
	pos := len(r.Cells)
	for i, c := range r.Cells {
		if c.addr == target {
			return c, nil
		}
		if cellref.Compare(c.addr, target) > 0 {
			pos = i
			break
		}
	}
	cell := &Cell{R: target.String(), addr: target}
	r.Cells = slices.Insert(r.Cells, pos, cell)
	// spans is an optional hint that no longer holds.
	r.Attrs = slices.DeleteFunc(r.Attrs, func(a xml.Attr) bool {
		return a.Name.Space == "" && a.Name.Local == "spans"
	})
	return cell, nil
}

// normalize parses cell references once and fills in references that are
// implied by position (the cell after C5 is D5).
func (r *Row) normalize() error {
	var prev cellref.Address
	for i, c := range r.Cells {
		if c.addr.Column != "" && c.addr.String() == c.R {
			prev = c.addr
			continue
		}
		if c.R == "" {
			col := 1
			if i > 0 {
				col = prev.ColumnIndex() + 1
			}
			ref, err := cellref.CoordinatesToAddress(col, r.R)
			if err != nil {
				return fmt.Errorf("row %d: cell %d has no reference: %w", r.R, i+1, err)
			}
			c.R = ref
		}
		a, err := cellref.Parse(c.R)
		if err != nil {
			return fmt.Errorf("row %d: %w", r.R, err)
		}
		c.R = a.String()
		c.addr = a
		prev = a
	}
	return nil
}

// FindRow returns the row with the given number, if present.
func (d *SheetData) FindRow(index int) (*Row, bool) {
	d.normalize()
	for _, row := range d.Rows {
		if row.R == index {
			return row, true
		}
		if row.R > index {
			break
		}
	}
	return nil, false
}

// FindOrInsertRow returns the row with the given number, creating it in
// ascending position when absent.
func (d *SheetData) FindOrInsertRow(index int) (*Row, error) {
	if index < 1 || index > cellref.MaxRows {
		return nil, fmt.Errorf("%w: row %d", cellref.ErrInvalidAddress, index)
	}
	d.normalize()
	pos := len(d.Rows)
	for i, row := range d.Rows {
		if row.R == index {
			return row, nil
		}
		if row.R > index {
			pos = i
			break
		}
	}
	row := &Row{R: index}
	d.Rows = slices.Insert(d.Rows, pos, row)
	return row, nil
}

// AppendRow adds row after the last row.
func (d *SheetData) AppendRow(row *Row) error {
	d.normalize()
	if row.R == 0 {
		row.R = 1
		if n := len(d.Rows); n > 0 {
			row.R = d.Rows[n-1].R + 1
		}
	}
	if n := len(d.Rows); n > 0 && d.Rows[n-1].R >= row.R {
		return fmt.Errorf("%w: %d after %d", ErrRowOutOfOrder, row.R, d.Rows[n-1].R)
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// Dimension returns the used range, e.g. "A1:C4", or "A1" for an empty sheet.
func (d *SheetData) Dimension() string {
	d.normalize()
	minCol, minRow, maxCol, maxRow := 0, 0, 0, 0
	for _, row := range d.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		if err := row.normalize(); err != nil {
			continue
		}
		first := row.Cells[0].addr.ColumnIndex()
		last := row.Cells[len(row.Cells)-1].addr.ColumnIndex()
		if minCol == 0 || first < minCol {
			minCol = first
		}
		if last > maxCol {
			maxCol = last
		}
		if minRow == 0 {
			minRow = row.R
		}
		maxRow = row.R
	}
	if minCol == 0 {
		return "A1"
	}
	start, _ := cellref.CoordinatesToAddress(minCol, minRow)
	end, _ := cellref.CoordinatesToAddress(maxCol, maxRow)
	if start == end {
		return start
	}
	return start + ":" + end
}

// normalize numbers rows whose r attribute was omitted.
func (d *SheetData) normalize() {
	prev := 0
	for _, row := range d.Rows {
		if row.R == 0 {
			row.R = prev + 1
		}
		prev = row.R
	}
}

// StringLookup resolves shared string indexes.
type StringLookup interface {
	Text(index int) (string, error)
}

var _ StringLookup = (*sharedstrings.Table)(nil)

// Cell types of the t attribute.
const (
	TypeSharedString = "s"
	TypeBool         = "b"
	TypeInlineString = "inlineStr"
	TypeFormulaStr   = "str"
	TypeNumber       = "n"
	TypeError        = "e"
)

// Cell maps a c element.
type Cell struct {
	R     string              `xml:"r,attr,omitempty"`
	S     int                 `xml:"s,attr,omitempty"`
	T     string              `xml:"t,attr,omitempty"`
	Attrs Attrs               `xml:",any,attr"`
	F     *Formula            `xml:"f"`
	V     string              `xml:"v,omitempty"`
	Is    *sharedstrings.Item `xml:"is"`

	addr cellref.Address
}

// Formula keeps an f element as found.
type Formula struct {
	Attrs   Attrs  `xml:",any,attr"`
	Content string `xml:",chardata"`
}

// Address returns the parsed cell reference.
func (c *Cell) Address() (cellref.Address, error) {
	if c.addr.Column != "" {
		return c.addr, nil
	}
	return cellref.Parse(c.R)
}

// SetSharedString points the cell at a shared string entry.
func (c *Cell) SetSharedString(index int) {
	c.T = TypeSharedString
	c.V = strconv.Itoa(index)
	c.F = nil
	c.Is = nil
}

// SetInlineString stores text in the cell itself.
func (c *Cell) SetInlineString(text string) {
	c.T = TypeInlineString
	c.V = ""
	c.F = nil
	c.Is = sharedstrings.NewItem(text)
}

// Text returns the cell's display text: shared strings and inline strings are
// resolved, booleans become TRUE or FALSE, anything else is the stored value.
func (c *Cell) Text(sst StringLookup) (string, error) {
	switch c.T {
	case TypeSharedString:
		index, err := strconv.Atoi(c.V)
		if err != nil {
			return "", fmt.Errorf("cell %s: bad shared string index %q", c.R, c.V)
		}
		if sst == nil {
			return "", fmt.Errorf("cell %s: %w: workbook has no shared strings", c.R, sharedstrings.ErrIndexOutOfRange)
		}
		return sst.Text(index)
	case TypeBool:
		switch c.V {
		case "0":
			return "FALSE", nil
		case "1":
			return "TRUE", nil
		}
		return c.V, nil
	case TypeInlineString:
		if c.Is != nil {
			return c.Is.String(), nil
		}
		return c.V, nil
	}
	return c.V, nil
}
