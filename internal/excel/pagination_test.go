package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dimensionOnly string

func (d dimensionOnly) Release() {}
func (d dimensionOnly) Name() (string, error) { return "Sheet1", nil }
func (d dimensionOnly) GetValue(string) (string, error) { return "", nil }
func (d dimensionOnly) SetText(string, string) error { return nil }
func (d dimensionOnly) GetDimention() (string, error) { return string(d), nil }

func TestFixedSizePaging(t *testing.T) {
	strategy, err := NewFixedSizePagingStrategy(100, dimensionOnly("A1:J25"))
	require.NoError(t, err)
	service := NewPagingRangeService(strategy)

	ranges := service.GetPagingRanges()
	assert.Equal(t, []string{"A1:J10", "A11:J20", "A21:J25"}, ranges)

	assert.NoError(t, service.ValidatePagingRange("A11:J20"))
	assert.NoError(t, service.ValidatePagingRange("C3:D4"))
	assert.ErrorContains(t, service.ValidatePagingRange("A1:J11"), "exceeding page size")
	assert.ErrorContains(t, service.ValidatePagingRange("A20:K20"), "outside sheet dimensions")
	assert.ErrorContains(t, service.ValidatePagingRange("nope"), "invalid range format")

	assert.Equal(t, "A11:J20", service.FindNextRange(ranges, "A1:J10"))
	assert.Empty(t, service.FindNextRange(ranges, "A21:J25"))
	assert.Empty(t, service.FindNextRange(ranges, "B2"))

	assert.Equal(t, []string{"A21:J25"}, service.FilterRemainingPagingRanges(ranges, []string{"A1:J10", "A11:J20"}))
	assert.Equal(t, ranges, service.FilterRemainingPagingRanges(ranges, nil))
}

func TestFixedSizePagingWideSheet(t *testing.T) {
	strategy, err := NewFixedSizePagingStrategy(10, dimensionOnly("A1:Z3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A1:Z1", "A2:Z2", "A3:Z3"}, strategy.CalculatePagingRanges())

	strategy, err = NewFixedSizePagingStrategy(0, dimensionOnly("B2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B2:B2"}, strategy.CalculatePagingRanges())
}
