package excel

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/CLangCodes/Excel-Helper/internal/ooxml"
)

type OleExcel struct {
	application *ole.IDispatch
	workbook    *ole.IDispatch
}

type OleWorksheet struct {
	excel     *OleExcel
	worksheet *ole.IDispatch
}

// NewExcelOle attaches to the workbook at absolutePath in a running Excel.
func NewExcelOle(absolutePath string) (Excel, func(), error) {
	runtime.LockOSThread()
	ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	fail := func(err error) (Excel, func(), error) {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, func() {}, err
	}

	unknown, err := oleutil.GetActiveObject("Excel.Application")
	if err != nil {
		return fail(err)
	}
	excel, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fail(err)
	}
	workbooks := oleutil.MustGetProperty(excel, "Workbooks").ToIDispatch()
	c := oleutil.MustGetProperty(workbooks, "Count").Val
	for i := 1; i <= int(c); i++ {
		workbook := oleutil.MustGetProperty(workbooks, "Item", i).ToIDispatch()
		fullName := oleutil.MustGetProperty(workbook, "FullName").ToString()
		name := oleutil.MustGetProperty(workbook, "Name").ToString()
		matched := normalizePath(fullName) == normalizePath(absolutePath)
		if strings.HasPrefix(fullName, "https:") && name == filepath.Base(absolutePath) {
			// A workbook opened through a WOPI URL has no local path. A local
			// file that is not writable is assumed to be that workbook.
			matched = ooxml.FileIsNotWritable(absolutePath)
		}
		if !matched {
			workbook.Release()
			continue
		}
		oleutil.MustPutProperty(excel, "ScreenUpdating", false)
		oleutil.MustPutProperty(excel, "EnableEvents", false)
		return &OleExcel{application: excel, workbook: workbook}, func() {
			oleutil.MustPutProperty(excel, "EnableEvents", true)
			oleutil.MustPutProperty(excel, "ScreenUpdating", true)
			workbook.Release()
			workbooks.Release()
			excel.Release()
			ole.CoUninitialize()
			runtime.UnlockOSThread()
		}, nil
	}
	workbooks.Release()
	excel.Release()
	return fail(fmt.Errorf("%w: %s is not open in Excel", ErrFileNotFound, absolutePath))
}

// NewExcelOleWithNewObject starts a hidden Excel and opens the workbook in it.
func NewExcelOleWithNewObject(absolutePath string) (Excel, func(), error) {
	runtime.LockOSThread()
	ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	fail := func(err error) (Excel, func(), error) {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, func() {}, err
	}

	unknown, err := oleutil.CreateObject("Excel.Application")
	if err != nil {
		return fail(err)
	}
	excel, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fail(err)
	}
	workbooks := oleutil.MustGetProperty(excel, "Workbooks").ToIDispatch()
	workbook, err := oleutil.CallMethod(workbooks, "Open", absolutePath)
	if err != nil {
		workbooks.Release()
		oleutil.CallMethod(excel, "Quit")
		excel.Release()
		return fail(err)
	}
	w := workbook.ToIDispatch()
	return &OleExcel{application: excel, workbook: w}, func() {
		oleutil.CallMethod(w, "Close", false)
		w.Release()
		workbooks.Release()
		oleutil.CallMethod(excel, "Quit")
		excel.Release()
		ole.CoUninitialize()
		runtime.UnlockOSThread()
	}, nil
}

func (o *OleExcel) GetBackendName() string {
	return string(BackendOLE)
}

func (o *OleExcel) GetSheets() ([]Worksheet, error) {
	worksheets := oleutil.MustGetProperty(o.workbook, "Worksheets").ToIDispatch()
	defer worksheets.Release()

	count := int(oleutil.MustGetProperty(worksheets, "Count").Val)
	worksheetList := make([]Worksheet, count)

	for i := 1; i <= count; i++ {
		worksheet := oleutil.MustGetProperty(worksheets, "Item", i).ToIDispatch()
		worksheetList[i-1] = &OleWorksheet{
			excel:     o,
			worksheet: worksheet,
		}
	}
	return worksheetList, nil
}

func (o *OleExcel) FindSheet(sheetName string) (Worksheet, error) {
	worksheets := oleutil.MustGetProperty(o.workbook, "Worksheets").ToIDispatch()
	defer worksheets.Release()

	count := int(oleutil.MustGetProperty(worksheets, "Count").Val)

	for i := 1; i <= count; i++ {
		worksheet := oleutil.MustGetProperty(worksheets, "Item", i).ToIDispatch()
		name := oleutil.MustGetProperty(worksheet, "Name").ToString()

		if strings.EqualFold(name, sheetName) {
			return &OleWorksheet{
				excel:     o,
				worksheet: worksheet,
			}, nil
		}
		worksheet.Release()
	}

	return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
}

// GetOrCreateSheet adds a missing sheet after the active one.
func (o *OleExcel) GetOrCreateSheet(sheetName string) (Worksheet, error) {
	if sheetName != "" {
		if worksheet, err := o.FindSheet(sheetName); err == nil {
			return worksheet, nil
		}
	}
	activeWorksheet := oleutil.MustGetProperty(o.workbook, "ActiveSheet").ToIDispatch()
	defer activeWorksheet.Release()
	worksheets := oleutil.MustGetProperty(o.workbook, "Worksheets").ToIDispatch()
	defer worksheets.Release()

	added, err := oleutil.CallMethod(worksheets, "Add", nil, activeWorksheet)
	if err != nil {
		return nil, err
	}
	worksheet := added.ToIDispatch()

	if sheetName != "" {
		if _, err := oleutil.PutProperty(worksheet, "Name", sheetName); err != nil {
			worksheet.Release()
			return nil, err
		}
	}
	return &OleWorksheet{excel: o, worksheet: worksheet}, nil
}

func (o *OleExcel) Save() error {
	_, err := oleutil.CallMethod(o.workbook, "Save")
	if err != nil {
		return err
	}
	return nil
}

func (o *OleWorksheet) Release() {
	o.worksheet.Release()
}

func (o *OleWorksheet) Name() (string, error) {
	name := oleutil.MustGetProperty(o.worksheet, "Name").ToString()
	return name, nil
}

// SetText writes through Value2 with a text number format so Excel keeps the
// string as typed.
func (o *OleWorksheet) SetText(cell string, text string) error {
	range_, err := oleutil.GetProperty(o.worksheet, "Range", cell)
	if err != nil {
		return err
	}
	r := range_.ToIDispatch()
	defer r.Release()
	if _, err := oleutil.PutProperty(r, "NumberFormat", "@"); err != nil {
		return err
	}
	_, err = oleutil.PutProperty(r, "Value2", text)
	return err
}

func (o *OleWorksheet) GetValue(cell string) (string, error) {
	range_, err := oleutil.GetProperty(o.worksheet, "Range", cell)
	if err != nil {
		return "", err
	}
	r := range_.ToIDispatch()
	defer r.Release()
	value := oleutil.MustGetProperty(r, "Value2").Value()
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case float64:
		// Value2 carries dates as serial numbers, as the file stores them.
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default: // Handle other types as needed
		return "", fmt.Errorf("unsupported type: %T", v)
	}
}

func (o *OleWorksheet) GetDimention() (string, error) {
	range_ := oleutil.MustGetProperty(o.worksheet, "UsedRange").ToIDispatch()
	defer range_.Release()
	dimension := oleutil.MustGetProperty(range_, "Address").ToString()
	return NormalizeRange(dimension), nil
}

func normalizePath(path string) string {
	// Normalize the volume name to uppercase
	vol := filepath.VolumeName(path)
	if vol == "" {
		return path
	}
	rest := path[len(vol):]
	return filepath.Clean(strings.ToUpper(vol) + rest)
}
