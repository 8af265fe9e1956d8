// Package sharedstrings implements the workbook shared string table: an
// ordered pool of unique texts referenced from cells by index.
package sharedstrings

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrIndexOutOfRange is returned when a cell refers to a missing entry.
var ErrIndexOutOfRange = errors.New("shared string index out of range")

// Table maps the sst element of xl/sharedStrings.xml.
type Table struct {
	XMLName     xml.Name `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main sst"`
	Count       int      `xml:"count,attr,omitempty"`
	UniqueCount int      `xml:"uniqueCount,attr,omitempty"`
	Items       []*Item  `xml:"si"`

	// index maps an item's plain text to the position of its first
	// occurrence; items[:indexed] are in it.
	index   map[string]int
	indexed int
}

// Item maps an si (or an inline is) element: either plain text or a list of
// rich text runs.
type Item struct {
	T *Text `xml:"t"`
	R []Run `xml:"r"`
}

// Run is a rich text run. Its properties are kept verbatim.
type Run struct {
	RPr *RunProperties `xml:"rPr"`
	T   Text           `xml:"t"`
}

// RunProperties holds the raw content of an rPr element.
type RunProperties struct {
	Inner []byte `xml:",innerxml"`
}

// Text maps a t element.
type Text struct {
	Space string `xml:"http://www.w3.org/XML/1998/namespace space,attr,omitempty"`
	Value string `xml:",chardata"`
}

// New returns an empty table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// NewItem returns a plain text item, preserving surrounding whitespace.
func NewItem(text string) *Item {
	t := &Text{Value: text}
	if text != strings.TrimSpace(text) {
		t.Space = "preserve"
	}
	return &Item{T: t}
}

// String returns the plain text of the item, concatenating rich text runs.
func (i *Item) String() string {
	if i == nil {
		return ""
	}
	if len(i.R) == 0 {
		if i.T == nil {
			return ""
		}
		return i.T.Value
	}
	var sb strings.Builder
	if i.T != nil {
		sb.WriteString(i.T.Value)
	}
	for _, r := range i.R {
		sb.WriteString(r.T.Value)
	}
	return sb.String()
}

// Len returns the number of unique entries.
func (t *Table) Len() int {
	return len(t.Items)
}

// Text returns the plain text at index.
func (t *Table) Text(index int) (string, error) {
	if index < 0 || index >= len(t.Items) {
		return "", fmt.Errorf("%w: %d (table has %d entries)", ErrIndexOutOfRange, index, len(t.Items))
	}
	return t.Items[index].String(), nil
}

// Intern returns the index of text in the table, appending it when absent.
// The index of a given text never changes once assigned.
func (t *Table) Intern(text string) int {
	t.buildIndex()
	t.Count++
	if i, ok := t.index[text]; ok {
		return i
	}
	i := len(t.Items)
	t.Items = append(t.Items, NewItem(text))
	t.index[text] = i
	t.indexed = len(t.Items)
	t.UniqueCount = len(t.Items)
	return i
}

func (t *Table) buildIndex() {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Items))
		t.indexed = 0
	}
	for ; t.indexed < len(t.Items); t.indexed++ {
		s := t.Items[t.indexed].String()
		if _, dup := t.index[s]; !dup {
			t.index[s] = t.indexed
		}
	}
}

// Parse decodes an sst part.
func Parse(data []byte) (*Table, error) {
	t := New()
	if err := xml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse shared strings: %w", err)
	}
	return t, nil
}

// Marshal encodes the table as a complete part, XML declaration included.
func (t *Table) Marshal() ([]byte, error) {
	t.UniqueCount = len(t.Items)
	if t.Count < t.UniqueCount {
		t.Count = t.UniqueCount
	}
	out, err := xml.Marshal(t)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
