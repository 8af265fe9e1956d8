// Package cellref converts between spreadsheet cell addresses such as "AB12"
// and their column/row coordinates.
//
// Columns use bijective base-26: there is no letter for zero, so "A" is 1,
// "Z" is 26 and "AA" is 27.
package cellref

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MaxColumns is the largest column index a worksheet can hold (XFD).
	MaxColumns = 16384
	// MaxRows is the largest row number a worksheet can hold.
	MaxRows = 1048576
)

var (
	// ErrInvalidAddress indicates a malformed cell reference.
	ErrInvalidAddress = errors.New("invalid cell address")
	// ErrInvalidIndex indicates a column index below 1.
	ErrInvalidIndex = errors.New("invalid column index")
)

// Address is a parsed cell reference.
type Address struct {
	// Column holds upper-case letters, e.g. "AB".
	Column string
	// Row is 1-based.
	Row int
}

// Parse parses a cell reference like "B12" or "$B$12". Lower-case letters are
// accepted and normalized.
func Parse(address string) (Address, error) {
	ref := upperASCII(strings.ReplaceAll(address, "$", ""))
	split := strings.IndexFunc(ref, isDigit)
	if split <= 0 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	letters, digits := ref[:split], ref[split:]
	col, err := ColumnLettersToIndex(letters)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if col > MaxColumns {
		return Address{}, fmt.Errorf("%w: column %s is beyond %d", ErrInvalidAddress, letters, MaxColumns)
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if row < 1 || row > MaxRows {
		return Address{}, fmt.Errorf("%w: row %d is out of range", ErrInvalidAddress, row)
	}
	return Address{Column: letters, Row: row}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(address string) Address {
	a, err := Parse(address)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return a.Column + strconv.Itoa(a.Row)
}

// ColumnIndex returns the 1-based column number. It returns 0 for the zero
// Address.
func (a Address) ColumnIndex() int {
	col, err := ColumnLettersToIndex(a.Column)
	if err != nil {
		return 0
	}
	return col
}

// Compare orders addresses by column index, then by row. Column letters are
// never compared as strings: "B" comes before "AA".
func Compare(a, b Address) int {
	if c := compareColumns(a.Column, b.Column); c != 0 {
		return c
	}
	switch {
	case a.Row < b.Row:
		return -1
	case a.Row > b.Row:
		return 1
	}
	return 0
}

// compareColumns is equivalent to comparing ColumnLettersToIndex results for
// well-formed letters: a shorter column always has a smaller index.
func compareColumns(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// ParseColumn strips every digit from the upper-cased address and returns the
// remaining column letters.
func ParseColumn(address string) (string, error) {
	letters := strings.Map(func(r rune) rune {
		if isDigit(r) {
			return -1
		}
		return r
	}, upperASCII(address))
	if letters == "" {
		return "", fmt.Errorf("%w: no column in %q", ErrInvalidAddress, address)
	}
	for _, r := range letters {
		if !isLetter(r) {
			return "", fmt.Errorf("%w: unexpected %q in %q", ErrInvalidAddress, r, address)
		}
	}
	return letters, nil
}

// ParseRow strips every letter from the address and parses the rest as a
// non-negative row number. A failed parse is an error, never row 0.
func ParseRow(address string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if isLetter(r) || (r >= 'a' && r <= 'z') {
			return -1
		}
		return r
	}, address)
	if digits == "" {
		return 0, fmt.Errorf("%w: no row in %q", ErrInvalidAddress, address)
	}
	row, err := strconv.ParseUint(digits, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: bad row in %q", ErrInvalidAddress, address)
	}
	return int(row), nil
}

// ColumnLettersToIndex converts column letters to a 1-based index, reading
// from the rightmost (least significant) letter.
func ColumnLettersToIndex(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("%w: empty column", ErrInvalidAddress)
	}
	sum, multiplier := 0, 1
	for i := len(letters) - 1; i >= 0; i-- {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: bad column %q", ErrInvalidAddress, letters)
		}
		value := int(c-'A') + 1
		if multiplier > (math.MaxInt32-sum)/value {
			return 0, fmt.Errorf("%w: column %q is too large", ErrInvalidAddress, letters)
		}
		sum += multiplier * value
		if i > 0 {
			if multiplier > math.MaxInt32/26 {
				return 0, fmt.Errorf("%w: column %q is too large", ErrInvalidAddress, letters)
			}
			multiplier *= 26
		}
	}
	return sum, nil
}

// IndexToColumnLetters converts a 1-based column index to its letters.
func IndexToColumnLetters(index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	var buf [16]byte
	i := len(buf)
	for index > 0 {
		index--
		i--
		buf[i] = byte('A' + index%26)
		index /= 26
	}
	return string(buf[i:]), nil
}

// CoordinatesToAddress builds an address string from 1-based coordinates.
func CoordinatesToAddress(col, row int) (string, error) {
	letters, err := IndexToColumnLetters(col)
	if err != nil {
		return "", err
	}
	if row < 1 {
		return "", fmt.Errorf("%w: row %d", ErrInvalidAddress, row)
	}
	return letters + strconv.Itoa(row), nil
}

// ParseRange parses "A1:C10" (or a single cell "A1") into 1-based bounds.
func ParseRange(rangeStr string) (startCol, startRow, endCol, endRow int, err error) {
	first, second, isRange := strings.Cut(rangeStr, ":")
	start, err := Parse(first)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	end := start
	if isRange {
		if end, err = Parse(second); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	startCol, endCol = start.ColumnIndex(), end.ColumnIndex()
	startRow, endRow = start.Row, end.Row
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	return startCol, startRow, endCol, endRow, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// upperASCII folds a-z only, leaving other letters to be rejected.
func upperASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, s)
}
