package ooxml

import (
	"archive/zip"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
	"github.com/CLangCodes/Excel-Helper/internal/sheetdata"
)

func zipParts(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	parts := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = data
	}
	return parts
}

func excelizeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "hello"))
	require.NoError(t, f.SetCellBool("Sheet1", "B2", true))
	require.NoError(t, f.SetCellBool("Sheet1", "C2", false))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", 42))
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("Data", "AA1", "wide"))
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestCreateSetSaveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	p, err := Create(path)
	require.NoError(t, err)
	assert.Empty(t, p.SheetNames())

	require.NoError(t, p.SetCellText("Sheet1", "A1", "hello"))
	require.NoError(t, p.Save())
	require.NoError(t, p.Close())

	p, err = Open(path, false)
	require.NoError(t, err)
	value, err := p.CellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	value, err = p.CellValue("Sheet1", "B7")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestExcelizeReadsOurPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	p, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, p.SetCellText("Report", "C5", "last"))
	require.NoError(t, p.SetCellText("Report", "A2", "first"))
	require.NoError(t, p.SetCellText("Report", "AA2", "far"))
	require.NoError(t, p.SetCellText("Report", "B2", "first"))
	require.NoError(t, p.Save())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Report"}, f.GetSheetList())
	for cell, expected := range map[string]string{"A2": "first", "B2": "first", "AA2": "far", "C5": "last"} {
		value, err := f.GetCellValue("Report", cell)
		require.NoError(t, err)
		assert.Equal(t, expected, value, cell)
	}
	dimension, err := f.GetSheetDimension("Report")
	require.NoError(t, err)
	assert.Equal(t, "A2:AA5", dimension)

	sst, err := p.SharedStrings()
	require.NoError(t, err)
	assert.Equal(t, 3, sst.Len())
}

func TestReadExcelizePackage(t *testing.T) {
	p, err := Open(excelizeFixture(t), false)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, []string{"Sheet1", "Data"}, p.SheetNames())
	for cell, expected := range map[string]string{"A1": "hello", "B2": "TRUE", "C2": "FALSE", "C3": "42", "D4": ""} {
		value, err := p.CellValue("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, expected, value, cell)
	}

	value, err := p.CellValue("data", "AA1")
	require.NoError(t, err)
	assert.Equal(t, "wide", value)

	_, err = p.CellValue("Missing", "A1")
	assert.ErrorIs(t, err, ErrSheetNotFound)
	_, err = p.CellValue("Sheet1", "A0")
	assert.ErrorIs(t, err, cellref.ErrInvalidAddress)

	_, found, err := p.LookupSheet("Missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEditKeepsOtherParts(t *testing.T) {
	path := excelizeFixture(t)
	before := zipParts(t, path)

	p, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, p.SetCellText("Sheet1", "B1", "added"))
	require.NoError(t, p.SetCellText("Sheet1", "A1", "replaced"))
	require.NoError(t, p.SetCellText("New", "A1", "x"))
	require.NoError(t, p.Save())
	require.NoError(t, p.Close())

	after := zipParts(t, path)
	for name, data := range before {
		switch name {
		case "[Content_Types].xml", "xl/workbook.xml", "xl/_rels/workbook.xml.rels",
			"xl/worksheets/sheet1.xml", "xl/sharedStrings.xml":
			continue
		}
		assert.Equal(t, string(data), string(after[name]), name)
	}

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1", "Data", "New"}, f.GetSheetList())
	for _, tt := range []struct{ sheet, cell, expected string }{
		{"Sheet1", "A1", "replaced"},
		{"Sheet1", "B1", "added"},
		{"Sheet1", "B2", "TRUE"},
		{"Sheet1", "C3", "42"},
		{"Data", "AA1", "wide"},
		{"New", "A1", "x"},
	} {
		value, err := f.GetCellValue(tt.sheet, tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, value, tt.sheet+"!"+tt.cell)
	}
}

func TestInlineStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inline.xlsx")
	p, err := Create(path, WithTextStorage(StorageInline))
	require.NoError(t, err)
	require.NoError(t, p.SetCellText("Sheet1", "B3", "  padded "))
	require.NoError(t, p.Save())

	parts := zipParts(t, path)
	assert.NotContains(t, parts, "xl/sharedStrings.xml")
	assert.Contains(t, string(parts["xl/worksheets/sheet1.xml"]), `t="inlineStr"`)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	value, err := f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "  padded ", value)
}

func TestGetOrCreateWorksheet(t *testing.T) {
	p, err := Create(filepath.Join(t.TempDir(), "sheets.xlsx"))
	require.NoError(t, err)

	first, err := p.GetOrCreateWorksheet("")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", first.Name())
	assert.Equal(t, 1, first.SheetID())

	second, err := p.GetOrCreateWorksheet("")
	require.NoError(t, err)
	assert.Equal(t, "Sheet2", second.Name())
	assert.Equal(t, 2, second.SheetID())

	again, err := p.GetOrCreateWorksheet("SHEET1")
	require.NoError(t, err)
	assert.Same(t, first, again)

	named, err := p.GetOrCreateWorksheet("Totals")
	require.NoError(t, err)
	assert.Equal(t, 3, named.SheetID())

	for _, name := range []string{"a/b", "[x]", "'quoted'", "this name is far too long for excel"} {
		_, err := p.GetOrCreateWorksheet(name)
		assert.ErrorIs(t, err, ErrInvalidSheetName, name)
	}
	assert.Equal(t, []string{"Sheet1", "Sheet2", "Totals"}, p.SheetNames())

	sheets, err := p.Worksheets()
	require.NoError(t, err)
	assert.Len(t, sheets, 3)
}

func TestSaveReadOnly(t *testing.T) {
	p, err := Open(excelizeFixture(t), false)
	require.NoError(t, err)
	require.NoError(t, p.SetCellText("Sheet1", "A1", "changed"))
	assert.ErrorIs(t, p.Save(), ErrNotWritable)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"), false)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestWithPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoped.xlsx")
	err := WithPackage(path, true, func(p *Package) error {
		return p.SetCellText("Sheet1", "D4", "scoped")
	})
	require.NoError(t, err)

	var value string
	err = WithPackage(path, false, func(p *Package) error {
		value, err = p.CellValue("Sheet1", "D4")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "scoped", value)

	err = WithPackage(filepath.Join(t.TempDir(), "none.xlsx"), false, func(p *Package) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestAppendRowThenSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	p, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, p.SetCellText("Log", "B2", "first"))

	sheet, err := p.Sheet("Log")
	require.NoError(t, err)
	require.NoError(t, sheet.AppendRow(&sheetdata.Row{Cells: []*sheetdata.Cell{{R: "A3", V: "7"}}}))
	assert.ErrorIs(t, sheet.AppendRow(&sheetdata.Row{R: 2}), sheetdata.ErrRowOutOfOrder)
	require.NoError(t, p.Save())
	require.NoError(t, p.Close())

	p, err = Open(path, false)
	require.NoError(t, err)
	defer p.Close()
	sheet, err = p.Sheet("Log")
	require.NoError(t, err)
	var rows []int
	for _, row := range sheet.Rows() {
		rows = append(rows, row.R)
	}
	assert.Equal(t, []int{2, 3}, rows)
	value, err := p.CellValue("Log", "A3")
	require.NoError(t, err)
	assert.Equal(t, "7", value)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	value, err = f.GetCellValue("Log", "A3")
	require.NoError(t, err)
	assert.Equal(t, "7", value)
}
