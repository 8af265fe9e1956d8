package ooxml

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/CLangCodes/Excel-Helper/internal/sheetdata"
)

// workbook holds xl/workbook.xml with its sheets list decoded.
type workbook struct {
	data  []byte
	span  span
	dirty bool

	Sheets []*sheetEntry `xml:"sheet"`
}

// sheetEntry maps a sheet element of the workbook's sheets list.
type sheetEntry struct {
	Name    string          `xml:"name,attr"`
	SheetID int             `xml:"sheetId,attr"`
	State   string          `xml:"state,attr,omitempty"`
	RID     string          `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	Attrs   sheetdata.Attrs `xml:",any,attr"`
}

func parseWorkbook(part string, data []byte) (*workbook, error) {
	wb := &workbook{data: data}
	found, err := decodeChildren(part, data, map[string]any{"sheets": wb})
	if err != nil {
		return nil, err
	}
	s, ok := found["sheets"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no sheets element", ErrMalformedPart, part)
	}
	wb.span = s
	return wb, nil
}

func (wb *workbook) encode() ([]byte, error) {
	sheets, err := encodeElement("sheets", wb)
	if err != nil {
		return nil, err
	}
	return splice(wb.data, []span{wb.span}, [][]byte{sheets}), nil
}

func (wb *workbook) find(name string) *sheetEntry {
	for _, s := range wb.Sheets {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

func (wb *workbook) nextSheetID() int {
	highest := 0
	for _, s := range wb.Sheets {
		highest = max(highest, s.SheetID)
	}
	return highest + 1
}

// ValidateSheetName reports whether Excel accepts name as a sheet name.
func ValidateSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSheetName)
	}
	if utf8.RuneCountInString(name) > 31 {
		return fmt.Errorf("%w: %q is longer than 31 characters", ErrInvalidSheetName, name)
	}
	if strings.ContainsAny(name, `:\/?*[]`) {
		return fmt.Errorf("%w: %q contains one of : \\ / ? * [ ]", ErrInvalidSheetName, name)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("%w: %q starts or ends with an apostrophe", ErrInvalidSheetName, name)
	}
	return nil
}

// SheetNames returns the names of all sheets in workbook order.
func (p *Package) SheetNames() []string {
	names := make([]string, len(p.workbook.Sheets))
	for i, s := range p.workbook.Sheets {
		names[i] = s.Name
	}
	return names
}

// Worksheets returns every worksheet in workbook order. Chart sheets are
// left out.
func (p *Package) Worksheets() ([]*Worksheet, error) {
	sheets := make([]*Worksheet, 0, len(p.workbook.Sheets))
	for _, entry := range p.workbook.Sheets {
		ws, err := p.worksheet(entry)
		if errors.Is(err, ErrSheetNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ws)
	}
	return sheets, nil
}

// LookupSheet finds a sheet by name, ignoring case as Excel does. The bool
// reports whether it exists.
func (p *Package) LookupSheet(name string) (*Worksheet, bool, error) {
	entry := p.workbook.find(name)
	if entry == nil {
		return nil, false, nil
	}
	ws, err := p.worksheet(entry)
	if err != nil {
		return nil, false, err
	}
	return ws, true, nil
}

// Sheet is like LookupSheet but fails with ErrSheetNotFound.
func (p *Package) Sheet(name string) (*Worksheet, error) {
	ws, ok, err := p.LookupSheet(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	return ws, nil
}

// GetOrCreateWorksheet returns the sheet called name, adding it when absent.
// A new sheet gets the highest existing sheet id plus one; when name is empty
// it is called "Sheet<id>" (or the next free "Sheet<n>").
func (p *Package) GetOrCreateWorksheet(name string) (*Worksheet, error) {
	if name != "" {
		if ws, ok, err := p.LookupSheet(name); err != nil || ok {
			return ws, err
		}
		if err := ValidateSheetName(name); err != nil {
			return nil, err
		}
	}

	id := p.workbook.nextSheetID()
	if name == "" {
		for n := id; ; n++ {
			name = "Sheet" + strconv.Itoa(n)
			if p.workbook.find(name) == nil {
				break
			}
		}
	}

	dir := path.Dir(p.workbookPart)
	var part string
	for n := id; ; n++ {
		part = path.Join(dir, "worksheets", "sheet"+strconv.Itoa(n)+".xml")
		if _, taken := p.parts[part]; !taken {
			break
		}
	}
	p.putPart(part, []byte(templateWorksheet))

	rid := p.workbookRels.add(relTypeWorksheet, relativeTarget(p.workbookPart, part))
	p.types.setOverride(part, contentTypeWorksheet)
	entry := &sheetEntry{Name: name, SheetID: id, RID: rid}
	p.workbook.Sheets = append(p.workbook.Sheets, entry)
	p.workbook.dirty, p.relsDirty, p.typesDirty = true, true, true

	ws, err := p.worksheet(entry)
	if err != nil {
		return nil, err
	}
	ws.dirty = true
	return ws, nil
}

// worksheet loads the part behind a sheets list entry.
func (p *Package) worksheet(entry *sheetEntry) (*Worksheet, error) {
	rel, ok := p.workbookRels.byID(entry.RID)
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q has no relationship %s", ErrMalformedPart, entry.Name, entry.RID)
	}
	if rel.Type != relTypeWorksheet {
		return nil, fmt.Errorf("%w: %q is not a worksheet", ErrSheetNotFound, entry.Name)
	}
	part := resolveTarget(p.workbookPart, rel.Target)
	if ws, ok := p.worksheets[part]; ok {
		return ws, nil
	}
	data, ok := p.parts[part]
	if !ok {
		return nil, fmt.Errorf("%w: %s is missing", ErrMalformedPart, part)
	}
	ws, err := parseWorksheet(part, data, entry)
	if err != nil {
		return nil, err
	}
	p.worksheets[part] = ws
	return ws, nil
}
