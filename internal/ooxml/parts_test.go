package ooxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const excelWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006" mc:Ignorable="x15">` +
	`<workbookPr defaultThemeVersion="166925"/>` +
	`<bookViews><workbookView xWindow="0" yWindow="0" windowWidth="28800" windowHeight="12300"/></bookViews>` +
	`<sheets><sheet name="Budget" sheetId="4" r:id="rId1"/><sheet name="Hidden" sheetId="7" state="hidden" r:id="rId2"/></sheets>` +
	`<calcPr calcId="191029"/></workbook>`

func TestParseWorkbook(t *testing.T) {
	wb, err := parseWorkbook("xl/workbook.xml", []byte(excelWorkbook))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "rId1", wb.Sheets[0].RID)
	assert.Equal(t, 4, wb.Sheets[0].SheetID)
	assert.Equal(t, "hidden", wb.Sheets[1].State)
	assert.Equal(t, 8, wb.nextSheetID())
	assert.Same(t, wb.Sheets[1], wb.find("HIDDEN"))

	wb.Sheets = append(wb.Sheets, &sheetEntry{Name: "New", SheetID: 8, RID: "rId9"})
	out, err := wb.encode()
	require.NoError(t, err)
	s := string(out)

	prefix := excelWorkbook[:strings.Index(excelWorkbook, "<sheets>")]
	suffix := excelWorkbook[strings.Index(excelWorkbook, "</sheets>")+len("</sheets>"):]
	assert.True(t, strings.HasPrefix(s, prefix))
	assert.True(t, strings.HasSuffix(s, suffix))

	again, err := parseWorkbook("xl/workbook.xml", out)
	require.NoError(t, err)
	require.Len(t, again.Sheets, 3)
	assert.Equal(t, "rId9", again.Sheets[2].RID)
	assert.Equal(t, "hidden", again.Sheets[1].State)
}

func TestPrefixedWorksheetIsRejected(t *testing.T) {
	const prefixed = `<x:worksheet xmlns:x="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><x:sheetData/></x:worksheet>`
	_, err := parseWorksheet("xl/worksheets/sheet1.xml", []byte(prefixed), &sheetEntry{Name: "Sheet1"})
	assert.ErrorIs(t, err, ErrMalformedPart)
}

func TestWorksheetEncodeUpdatesDimension(t *testing.T) {
	const part = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetPr><tabColor rgb="FF00FF00"/></sheetPr><dimension ref="A1"/><sheetViews><sheetView workbookViewId="0"/></sheetViews><sheetData><row r="1"><c r="A1"><v>1</v></c></row></sheetData><pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/></worksheet>`
	ws, err := parseWorksheet("xl/worksheets/sheet1.xml", []byte(part), &sheetEntry{Name: "Sheet1"})
	require.NoError(t, err)

	cell, err := ws.FindOrInsertCell("C4")
	require.NoError(t, err)
	cell.SetInlineString("x")

	out, err := ws.encode()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<sheetPr><tabColor rgb="FF00FF00"/></sheetPr><dimension ref="A1:C4"/><sheetViews>`)
	assert.Contains(t, s, `<row r="4"><c r="C4" t="inlineStr"><is><t>x</t></is></c></row></sheetData><pageMargins`)

	ws.data = out
	require.NoError(t, ws.index())
	assert.Equal(t, "A1:C4", ws.Dimension())
}

func TestRelationships(t *testing.T) {
	rels := &relationships{Items: []relationship{{ID: "rId3", Type: relTypeWorksheet, Target: "worksheets/sheet1.xml"}, {ID: "custom"}}}
	assert.Equal(t, "rId4", rels.add(relTypeSharedStrings, "/xl/sharedStrings.xml"))

	assert.Equal(t, "xl/_rels/workbook.xml.rels", relsPartFor("xl/workbook.xml"))
	assert.Equal(t, "xl/worksheets/sheet1.xml", resolveTarget("xl/workbook.xml", "worksheets/sheet1.xml"))
	assert.Equal(t, "xl/sharedStrings.xml", resolveTarget("xl/workbook.xml", "/xl/sharedStrings.xml"))
	assert.Equal(t, "xl/workbook.xml", resolveTarget("", "xl/workbook.xml"))
	assert.Equal(t, "worksheets/sheet2.xml", relativeTarget("xl/workbook.xml", "xl/worksheets/sheet2.xml"))
}
