package excel

import (
	"github.com/CLangCodes/Excel-Helper/internal/cellref"
)

// ParseRange parses Excel's range string (e.g. A1:C10 or A1)
func ParseRange(rangeStr string) (int, int, int, int, error) {
	return cellref.ParseRange(rangeStr)
}

// NormalizeRange drops absolute markers and orders the corners, e.g.
// "$C$3:A1" becomes "A1:C3". A single cell stays a single cell.
func NormalizeRange(rangeStr string) string {
	startCol, startRow, endCol, endRow, err := ParseRange(rangeStr)
	if err != nil {
		return rangeStr
	}
	startCell, _ := cellref.CoordinatesToAddress(startCol, startRow)
	endCell, _ := cellref.CoordinatesToAddress(endCol, endRow)
	if startCell == endCell {
		return startCell
	}
	return startCell + ":" + endCell
}

// ValidateCell checks a single cell reference such as "B2".
func ValidateCell(cell string) error {
	_, err := cellref.Parse(cell)
	return err
}


// boolText renders a stored boolean as Excel shows it.
func boolText(value string) string {
	switch value {
	case "1":
		return "TRUE"
	case "0":
		return "FALSE"
	}
	return value
}
