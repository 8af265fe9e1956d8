package excel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
	"github.com/CLangCodes/Excel-Helper/internal/ooxml"
)

type ExcelizeExcel struct {
	file     *excelize.File
	readOnly bool
}

func NewExcelizeExcel(file *excelize.File) Excel {
	return &ExcelizeExcel{file: file}
}

func openExcelize(absoluteFilePath string, opts Options) (Excel, func(), error) {
	file, err := excelize.OpenFile(absoluteFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, func() {}, fmt.Errorf("%w: %s", ErrFileNotFound, absoluteFilePath)
		}
		return nil, func() {}, err
	}
	return &ExcelizeExcel{file: file, readOnly: opts.ReadOnly}, func() {
		file.Close()
	}, nil
}

func createExcelize(absoluteFilePath string, sheetName string) (Excel, func(), error) {
	file := excelize.NewFile()
	file.Path = absoluteFilePath
	e := &ExcelizeExcel{file: file}
	if sheetName != "" && sheetName != file.GetSheetName(0) {
		if err := ooxml.ValidateSheetName(sheetName); err != nil {
			file.Close()
			return nil, func() {}, err
		}
		if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
			file.Close()
			return nil, func() {}, fmt.Errorf("failed to rename sheet: %w", err)
		}
	}
	if err := e.Save(); err != nil {
		file.Close()
		return nil, func() {}, err
	}
	return e, func() {
		file.Close()
	}, nil
}

func (e *ExcelizeExcel) GetBackendName() string {
	return string(BackendExcelize)
}

func (e *ExcelizeExcel) FindSheet(sheetName string) (Worksheet, error) {
	index, err := e.file.GetSheetIndex(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	return &ExcelizeWorksheet{file: e.file, sheetName: e.file.GetSheetName(index)}, nil
}

func (e *ExcelizeExcel) GetOrCreateSheet(sheetName string) (Worksheet, error) {
	if sheetName == "" {
		sheetName = e.nextDefaultSheetName()
	}
	if worksheet, err := e.FindSheet(sheetName); err == nil {
		return worksheet, nil
	}
	if err := ooxml.ValidateSheetName(sheetName); err != nil {
		return nil, err
	}
	if _, err := e.file.NewSheet(sheetName); err != nil {
		return nil, fmt.Errorf("failed to create new sheet: %w", err)
	}
	return &ExcelizeWorksheet{file: e.file, sheetName: sheetName}, nil
}

func (e *ExcelizeExcel) nextDefaultSheetName() string {
	for n := e.file.SheetCount + 1; ; n++ {
		name := fmt.Sprintf("Sheet%d", n)
		if index, _ := e.file.GetSheetIndex(name); index < 0 {
			return name
		}
	}
}

func (e *ExcelizeExcel) GetSheets() ([]Worksheet, error) {
	sheetList := e.file.GetSheetList()
	worksheets := make([]Worksheet, len(sheetList))
	for i, sheetName := range sheetList {
		worksheets[i] = &ExcelizeWorksheet{file: e.file, sheetName: sheetName}
	}
	return worksheets, nil
}

// Save saves the Excel file to its path.
// Excelize's Save method restricts the file path length to 207 characters,
// but since this limitation has been relaxed in some environments,
// we ignore this restriction.
// https://github.com/qax-os/excelize/blob/v2.9.0/file.go#L71-L73
func (e *ExcelizeExcel) Save() error {
	if e.readOnly {
		return fmt.Errorf("%w: %s", ErrNotWritable, e.file.Path)
	}
	file, err := os.OpenFile(filepath.Clean(e.file.Path), os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := e.file.Write(file); err != nil {
		return err
	}
	return file.Close()
}

type ExcelizeWorksheet struct {
	file      *excelize.File
	sheetName string
}

func (w *ExcelizeWorksheet) Release() {
	// No resources to release in excelize
}

func (w *ExcelizeWorksheet) Name() (string, error) {
	return w.sheetName, nil
}

func (w *ExcelizeWorksheet) SetText(cell string, text string) error {
	if err := w.file.SetCellStr(w.sheetName, cell, text); err != nil {
		return err
	}
	if err := w.updateDimension(cell); err != nil {
		return fmt.Errorf("failed to update dimension: %w", err)
	}
	return nil
}

func (w *ExcelizeWorksheet) GetValue(cell string) (string, error) {
	if err := ValidateCell(cell); err != nil {
		return "", err
	}
	value, err := w.file.GetCellValue(w.sheetName, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", err
	}
	cellType, err := w.file.GetCellType(w.sheetName, cell)
	if err != nil {
		return "", err
	}
	if cellType == excelize.CellTypeBool {
		return boolText(value), nil
	}
	return value, nil
}

func (w *ExcelizeWorksheet) GetDimention() (string, error) {
	dimension, err := w.file.GetSheetDimension(w.sheetName)
	if err != nil {
		return "", err
	}
	if dimension == "" {
		return "A1", nil
	}
	return NormalizeRange(dimension), nil
}

// updateDimension grows the dimension of the worksheet to cover the updated cell.
func (w *ExcelizeWorksheet) updateDimension(updatedCell string) error {
	updated, err := cellref.Parse(updatedCell)
	if err != nil {
		return err
	}
	dimension, err := w.file.GetSheetDimension(w.sheetName)
	if err != nil {
		return err
	}
	startCol, startRow, endCol, endRow := updated.ColumnIndex(), updated.Row, updated.ColumnIndex(), updated.Row
	if dimension != "" {
		if startCol, startRow, endCol, endRow, err = ParseRange(dimension); err != nil {
			return err
		}
	}
	startCol = min(startCol, updated.ColumnIndex())
	startRow = min(startRow, updated.Row)
	endCol = max(endCol, updated.ColumnIndex())
	endRow = max(endRow, updated.Row)

	startRange, err := cellref.CoordinatesToAddress(startCol, startRow)
	if err != nil {
		return err
	}
	endRange, err := cellref.CoordinatesToAddress(endCol, endRow)
	if err != nil {
		return err
	}
	return w.file.SetSheetDimension(w.sheetName, NormalizeRange(startRange+":"+endRange))
}
