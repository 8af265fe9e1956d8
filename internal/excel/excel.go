package excel

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/CLangCodes/Excel-Helper/internal/ooxml"
)

var (
	ErrFileNotFound     = ooxml.ErrFileNotFound
	ErrNotWritable      = ooxml.ErrNotWritable
	ErrSheetNotFound    = ooxml.ErrSheetNotFound
	ErrInvalidSheetName = ooxml.ErrInvalidSheetName
	ErrUnknownBackend   = errors.New("unknown backend")
)

type Excel interface {
	// GetBackendName returns the backend used to manipulate the Excel file.
	GetBackendName() string
	// GetSheets returns a list of all worksheets in the Excel file.
	GetSheets() ([]Worksheet, error)
	// FindSheet finds a sheet by its name and returns a Worksheet.
	// It fails with ErrSheetNotFound when the sheet does not exist.
	FindSheet(sheetName string) (Worksheet, error)
	// GetOrCreateSheet returns the named sheet, creating it when absent.
	GetOrCreateSheet(sheetName string) (Worksheet, error)
	// Save saves the Excel file.
	Save() error
}

type Worksheet interface {
	// Release releases the worksheet resources.
	Release()
	// Name returns the name of the worksheet.
	Name() (string, error)
	// GetValue gets the display text of the specified cell.
	GetValue(cell string) (string, error)
	// SetText stores text in the specified cell.
	SetText(cell string, text string) error
	// GetDimention gets the dimension of the worksheet.
	GetDimention() (string, error)
}

// Backend names a workbook implementation.
type Backend string

const (
	// BackendAuto drives a running Excel on Windows and reads the file
	// directly everywhere else.
	BackendAuto     Backend = "auto"
	BackendOpenXML  Backend = "openxml"
	BackendExcelize Backend = "excelize"
	BackendOLE      Backend = "ole"
)

// Options selects and configures the backend.
type Options struct {
	Backend Backend
	// TextStorage applies to the openxml backend.
	TextStorage ooxml.TextStorage
	// ReadOnly makes Save fail with ErrNotWritable where the backend allows.
	ReadOnly bool
}

// OpenFile opens an Excel file and returns an Excel interface.
// In auto mode it first tries to attach to the workbook in a running Excel
// through OLE automation, and if that fails, it reads the file itself.
func OpenFile(absoluteFilePath string, opts Options) (Excel, func(), error) {
	switch opts.Backend {
	case BackendAuto, "":
		if runtime.GOOS == "windows" {
			ole, releaseFn, err := NewExcelOle(absoluteFilePath)
			if err == nil {
				return ole, releaseFn, nil
			}
			slog.Debug("OLE automation unavailable, reading the file directly", "path", absoluteFilePath, "error", err)
		}
		return openOpenXML(absoluteFilePath, opts)
	case BackendOpenXML:
		return openOpenXML(absoluteFilePath, opts)
	case BackendExcelize:
		return openExcelize(absoluteFilePath, opts)
	case BackendOLE:
		ole, releaseFn, err := NewExcelOle(absoluteFilePath)
		if err == nil {
			return ole, releaseFn, nil
		}
		slog.Debug("workbook is not open in Excel, starting a new instance", "path", absoluteFilePath, "error", err)
		return NewExcelOleWithNewObject(absoluteFilePath)
	}
	return nil, func() {}, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
}

// CreateFile creates a new workbook holding one sheet and returns it opened.
// An existing file at the path is replaced. OLE cannot create files, so auto
// mode uses the openxml backend.
func CreateFile(absoluteFilePath string, sheetName string, opts Options) (Excel, func(), error) {
	switch opts.Backend {
	case BackendAuto, "", BackendOpenXML:
		return createOpenXML(absoluteFilePath, sheetName, opts)
	case BackendExcelize:
		return createExcelize(absoluteFilePath, sheetName)
	case BackendOLE:
		return nil, func() {}, fmt.Errorf("%w: the ole backend cannot create files", ErrUnknownBackend)
	}
	return nil, func() {}, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
}

// GetCellValue returns the display text of a cell; an absent cell is the
// empty string.
func GetCellValue(workbook Excel, sheetName string, cell string) (string, error) {
	worksheet, err := workbook.FindSheet(sheetName)
	if err != nil {
		return "", err
	}
	defer worksheet.Release()
	return worksheet.GetValue(cell)
}

// SetCellText stores text in a cell, creating the sheet when needed. The
// workbook still has to be saved.
func SetCellText(workbook Excel, sheetName string, cell string, text string) error {
	if err := ValidateCell(cell); err != nil {
		return err
	}
	worksheet, err := workbook.GetOrCreateSheet(sheetName)
	if err != nil {
		return err
	}
	defer worksheet.Release()
	return worksheet.SetText(cell, text)
}
