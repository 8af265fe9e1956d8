package excel

import (
	"github.com/CLangCodes/Excel-Helper/internal/ooxml"
)

// OpenXMLExcel edits the package on disk without any spreadsheet
// application.
type OpenXMLExcel struct {
	pkg *ooxml.Package
}

func NewOpenXMLExcel(pkg *ooxml.Package) Excel {
	return &OpenXMLExcel{pkg: pkg}
}

func packageOptions(opts Options) []ooxml.Option {
	if opts.TextStorage == "" {
		return nil
	}
	return []ooxml.Option{ooxml.WithTextStorage(opts.TextStorage)}
}

func openOpenXML(absoluteFilePath string, opts Options) (Excel, func(), error) {
	writable := !opts.ReadOnly && !ooxml.FileIsNotWritable(absoluteFilePath)
	pkg, err := ooxml.Open(absoluteFilePath, writable, packageOptions(opts)...)
	if err != nil {
		return nil, func() {}, err
	}
	return NewOpenXMLExcel(pkg), func() {
		pkg.Close()
	}, nil
}

func createOpenXML(absoluteFilePath string, sheetName string, opts Options) (Excel, func(), error) {
	pkg, err := ooxml.Create(absoluteFilePath, packageOptions(opts)...)
	if err != nil {
		return nil, func() {}, err
	}
	if _, err := pkg.GetOrCreateWorksheet(sheetName); err != nil {
		pkg.Close()
		return nil, func() {}, err
	}
	if err := pkg.Save(); err != nil {
		pkg.Close()
		return nil, func() {}, err
	}
	return NewOpenXMLExcel(pkg), func() {
		pkg.Close()
	}, nil
}

func (o *OpenXMLExcel) GetBackendName() string {
	return string(BackendOpenXML)
}

func (o *OpenXMLExcel) GetSheets() ([]Worksheet, error) {
	sheets, err := o.pkg.Worksheets()
	if err != nil {
		return nil, err
	}
	worksheets := make([]Worksheet, len(sheets))
	for i, sheet := range sheets {
		worksheets[i] = &OpenXMLWorksheet{pkg: o.pkg, sheet: sheet}
	}
	return worksheets, nil
}

func (o *OpenXMLExcel) FindSheet(sheetName string) (Worksheet, error) {
	sheet, err := o.pkg.Sheet(sheetName)
	if err != nil {
		return nil, err
	}
	return &OpenXMLWorksheet{pkg: o.pkg, sheet: sheet}, nil
}

func (o *OpenXMLExcel) GetOrCreateSheet(sheetName string) (Worksheet, error) {
	sheet, err := o.pkg.GetOrCreateWorksheet(sheetName)
	if err != nil {
		return nil, err
	}
	return &OpenXMLWorksheet{pkg: o.pkg, sheet: sheet}, nil
}

func (o *OpenXMLExcel) Save() error {
	return o.pkg.Save()
}

type OpenXMLWorksheet struct {
	pkg   *ooxml.Package
	sheet *ooxml.Worksheet
}

func (w *OpenXMLWorksheet) Release() {
	// The package owns the worksheet.
}

func (w *OpenXMLWorksheet) Name() (string, error) {
	return w.sheet.Name(), nil
}

func (w *OpenXMLWorksheet) GetValue(cell string) (string, error) {
	return w.pkg.CellValue(w.sheet.Name(), cell)
}

func (w *OpenXMLWorksheet) SetText(cell string, text string) error {
	return w.pkg.SetCellText(w.sheet.Name(), cell, text)
}

func (w *OpenXMLWorksheet) GetDimention() (string, error) {
	return w.sheet.Dimension(), nil
}
