package ooxml

import (
	"fmt"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
	"github.com/CLangCodes/Excel-Helper/internal/sheetdata"
)

// CellValue returns the display text of a cell: shared strings are resolved,
// booleans read TRUE or FALSE, and an absent cell is the empty string.
func (p *Package) CellValue(sheet, address string) (string, error) {
	if _, err := cellref.Parse(address); err != nil {
		return "", err
	}
	ws, err := p.Sheet(sheet)
	if err != nil {
		return "", err
	}
	cell, ok, err := ws.Cell(address)
	if err != nil || !ok {
		return "", err
	}
	var lookup sheetdata.StringLookup
	if cell.T == sheetdata.TypeSharedString {
		sst, err := p.loadSharedStrings(false)
		if err != nil {
			return "", err
		}
		if sst != nil {
			lookup = sst
		}
	}
	text, err := cell.Text(lookup)
	if err != nil {
		return "", fmt.Errorf("%s!%s: %w", ws.Name(), address, err)
	}
	return text, nil
}

// SetCellText stores text in a cell, creating the sheet, row and cell as
// needed. Text goes to the shared string table unless the package uses
// StorageInline. Call Save to persist it.
func (p *Package) SetCellText(sheet, address, text string) error {
	if _, err := cellref.Parse(address); err != nil {
		return err
	}
	ws, err := p.GetOrCreateWorksheet(sheet)
	if err != nil {
		return err
	}
	cell, err := ws.FindOrInsertCell(address)
	if err != nil {
		return err
	}
	if p.storage == StorageInline {
		cell.SetInlineString(text)
		return nil
	}
	sst, err := p.SharedStrings()
	if err != nil {
		return err
	}
	cell.SetSharedString(sst.Intern(text))
	return nil
}
