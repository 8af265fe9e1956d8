package excel

import (
	"fmt"
	"slices"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
)

// PagingStrategy computes the ranges a sheet is read in.
type PagingStrategy interface {
	// CalculatePagingRanges returns the pages of the sheet in reading order.
	CalculatePagingRanges() []string
	// ValidatePagingRange checks that a caller supplied range can be read as one page.
	ValidatePagingRange(rangeStr string) error
}

// FixedSizePagingStrategy splits the used range into row bands holding at
// most pageSize cells each.
type FixedSizePagingStrategy struct {
	pageSize  int
	dimension string
}

// NewFixedSizePagingStrategy reads the dimension of worksheet once.
func NewFixedSizePagingStrategy(pageSize int, worksheet Worksheet) (*FixedSizePagingStrategy, error) {
	if pageSize <= 0 {
		pageSize = 4000
	}
	dimension, err := worksheet.GetDimention()
	if err != nil {
		return nil, err
	}
	return &FixedSizePagingStrategy{
		pageSize:  pageSize,
		dimension: dimension,
	}, nil
}

func (s *FixedSizePagingStrategy) CalculatePagingRanges() []string {
	startCol, startRow, endCol, endRow, err := ParseRange(s.dimension)
	if err != nil {
		return []string{}
	}

	rowsPerPage := max(s.pageSize/(endCol-startCol+1), 1)

	var ranges []string
	for currentRow := startRow; currentRow <= endRow; currentRow += rowsPerPage {
		pageEndRow := min(currentRow+rowsPerPage-1, endRow)
		startRange, _ := cellref.CoordinatesToAddress(startCol, currentRow)
		endRange, _ := cellref.CoordinatesToAddress(endCol, pageEndRow)
		ranges = append(ranges, fmt.Sprintf("%s:%s", startRange, endRange))
	}
	return ranges
}

func (s *FixedSizePagingStrategy) ValidatePagingRange(rangeStr string) error {
	startCol, startRow, endCol, endRow, err := ParseRange(rangeStr)
	if err != nil {
		return fmt.Errorf("invalid range format: %w", err)
	}

	dimStartCol, dimStartRow, dimEndCol, dimEndRow, err := ParseRange(s.dimension)
	if err != nil {
		return fmt.Errorf("invalid dimension format: %w", err)
	}

	if startCol < dimStartCol || startRow < dimStartRow ||
		endCol > dimEndCol || endRow > dimEndRow {
		return fmt.Errorf("range %s is outside sheet dimensions %s",
			rangeStr, s.dimension)
	}

	cellCount := (endRow - startRow + 1) * (endCol - startCol + 1)
	if cellCount > s.pageSize {
		return fmt.Errorf("range contains %d cells, exceeding page size of %d",
			cellCount, s.pageSize)
	}

	return nil
}

// PagingRangeService answers paging questions for one sheet.
type PagingRangeService struct {
	strategy PagingStrategy
}

func NewPagingRangeService(strategy PagingStrategy) *PagingRangeService {
	return &PagingRangeService{strategy: strategy}
}

func (s *PagingRangeService) GetPagingRanges() []string {
	return s.strategy.CalculatePagingRanges()
}

func (s *PagingRangeService) ValidatePagingRange(rangeStr string) error {
	return s.strategy.ValidatePagingRange(rangeStr)
}

// FindNextRange returns the page after current, or "" when current is the
// last page or not a page at all.
func (s *PagingRangeService) FindNextRange(allRanges []string, current string) string {
	i := slices.Index(allRanges, current)
	if i < 0 || i+1 >= len(allRanges) {
		return ""
	}
	return allRanges[i+1]
}

// FilterRemainingPagingRanges returns the ranges not yet read, in order.
func (s *PagingRangeService) FilterRemainingPagingRanges(allRanges []string, knownRanges []string) []string {
	if len(knownRanges) == 0 {
		return allRanges
	}

	knownMap := make(map[string]bool, len(knownRanges))
	for _, r := range knownRanges {
		knownMap[r] = true
	}

	remaining := make([]string, 0)
	for _, r := range allRanges {
		if !knownMap[r] {
			remaining = append(remaining, r)
		}
	}
	return remaining
}
