// Package ooxml reads and writes SpreadsheetML packages (.xlsx files).
//
// A Package keeps every part of the archive in memory. Only the parts it
// understands are decoded, and only the elements it edits are rewritten: the
// sheets list of the workbook, the sheetData and dimension of worksheets, the
// shared string table, content types and relationships. Everything else is
// saved back byte for byte.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CLangCodes/Excel-Helper/internal/sharedstrings"
)

var (
	// ErrFileNotFound is returned when opening a path that does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrNotWritable is returned when saving a package opened read-only, or
	// opening a read-only file for writing.
	ErrNotWritable = errors.New("package is not writable")
	// ErrSheetNotFound is returned when a named sheet is absent.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrMalformedPart is returned when a part cannot be decoded.
	ErrMalformedPart = errors.New("malformed package part")
	// ErrInvalidSheetName is returned for names Excel would reject.
	ErrInvalidSheetName = errors.New("invalid sheet name")
)

// TextStorage selects how SetCellText stores text.
type TextStorage string

const (
	// StorageShared stores text in the shared string table.
	StorageShared TextStorage = "shared"
	// StorageInline stores text in the cell as an inline string.
	StorageInline TextStorage = "inline"
)

// Option configures a Package.
type Option func(*Package)

// WithTextStorage sets how SetCellText stores text. The default is
// StorageShared.
func WithTextStorage(storage TextStorage) Option {
	return func(p *Package) {
		p.storage = storage
	}
}

// Package is an open .xlsx file.
type Package struct {
	path     string
	writable bool
	storage  TextStorage

	parts map[string][]byte
	order []string

	types        *contentTypes
	typesDirty   bool
	workbookPart string
	workbookRels *relationships
	relsDirty    bool
	workbook     *workbook
	sst          *sharedstrings.Table
	sstPart      string
	sstDirty     bool
	worksheets   map[string]*Worksheet
}

func newPackage(path string, writable bool, opts []Option) *Package {
	p := &Package{
		path:       path,
		writable:   writable,
		storage:    StorageShared,
		parts:      make(map[string][]byte),
		worksheets: make(map[string]*Worksheet),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open reads the package at path. Save fails unless writable is set.
func Open(path string, writable bool, opts ...Option) (*Package, error) {
	r, err := zip.OpenReader(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	if writable && FileIsNotWritable(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotWritable, path)
	}

	p := newPackage(path, writable, opts)
	for _, f := range r.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		if _, dup := p.parts[f.Name]; !dup {
			p.order = append(p.order, f.Name)
		}
		p.parts[f.Name] = data
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Create writes a new package without sheets to path, replacing any file
// there, and returns it opened for writing.
func Create(path string, opts ...Option) (*Package, error) {
	p := newPackage(path, true, opts)

	types := newContentTypes()
	types.setOverride(defaultWorkbook, contentTypeWorkbook)
	rootRels := &relationships{}
	rootRels.add(relTypeOfficeDocument, defaultWorkbook)

	for name, v := range map[string]any{
		partContentTypes:            types,
		partPackageRels:             rootRels,
		relsPartFor(defaultWorkbook): &relationships{},
	} {
		data, err := marshalPart(v)
		if err != nil {
			return nil, err
		}
		p.parts[name] = data
	}
	p.parts[defaultWorkbook] = []byte(templateWorkbook)
	p.order = []string{partContentTypes, partPackageRels, defaultWorkbook, relsPartFor(defaultWorkbook)}

	if err := p.load(); err != nil {
		return nil, err
	}
	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenOrCreate opens the package at path for writing, creating it first when
// it does not exist.
func OpenOrCreate(path string, opts ...Option) (*Package, error) {
	p, err := Open(path, true, opts...)
	if errors.Is(err, ErrFileNotFound) {
		return Create(path, opts...)
	}
	return p, err
}

// WithPackage opens path, runs fn and closes the package on every path out.
// When writable is set and fn succeeds, the package is saved first.
func WithPackage(path string, writable bool, fn func(*Package) error, opts ...Option) (err error) {
	var p *Package
	if writable {
		p, err = OpenOrCreate(path, opts...)
	} else {
		p, err = Open(path, false, opts...)
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(p); err != nil {
		return err
	}
	if writable {
		return p.Save()
	}
	return nil
}

// load decodes the parts every operation needs.
func (p *Package) load() error {
	types := &contentTypes{}
	if err := p.decodePart(partContentTypes, types); err != nil {
		return err
	}
	p.types = types

	p.workbookPart = defaultWorkbook
	rootRels := &relationships{}
	if _, ok := p.parts[partPackageRels]; ok {
		if err := p.decodePart(partPackageRels, rootRels); err != nil {
			return err
		}
	}
	if rel, ok := rootRels.byType(relTypeOfficeDocument); ok {
		p.workbookPart = resolveTarget("", rel.Target)
	}

	p.workbookRels = &relationships{}
	if _, ok := p.parts[relsPartFor(p.workbookPart)]; ok {
		if err := p.decodePart(relsPartFor(p.workbookPart), p.workbookRels); err != nil {
			return err
		}
	}

	data, ok := p.parts[p.workbookPart]
	if !ok {
		return fmt.Errorf("%w: %s is missing", ErrMalformedPart, p.workbookPart)
	}
	wb, err := parseWorkbook(p.workbookPart, data)
	if err != nil {
		return err
	}
	p.workbook = wb
	return nil
}

func (p *Package) decodePart(name string, v any) error {
	data, ok := p.parts[name]
	if !ok {
		return fmt.Errorf("%w: %s is missing", ErrMalformedPart, name)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
	}
	return nil
}

func (p *Package) putPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// SharedStrings returns the shared string table, adding an empty one to the
// package when it has none.
func (p *Package) SharedStrings() (*sharedstrings.Table, error) {
	sst, err := p.loadSharedStrings(true)
	if err != nil {
		return nil, err
	}
	p.sstDirty = true
	return sst, nil
}

func (p *Package) loadSharedStrings(create bool) (*sharedstrings.Table, error) {
	if p.sst != nil {
		return p.sst, nil
	}
	if rel, ok := p.workbookRels.byType(relTypeSharedStrings); ok {
		name := resolveTarget(p.workbookPart, rel.Target)
		if data, ok := p.parts[name]; ok {
			sst, err := sharedstrings.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
			}
			p.sst, p.sstPart = sst, name
			return sst, nil
		}
	}
	if !create {
		return nil, nil
	}
	p.sstPart = resolveTarget(p.workbookPart, "sharedStrings.xml")
	p.sst = sharedstrings.New()
	// excelize matches this exact target.
	p.workbookRels.add(relTypeSharedStrings, "/"+p.sstPart)
	p.types.setOverride(p.sstPart, contentTypeSharedStrings)
	p.relsDirty, p.typesDirty, p.sstDirty = true, true, true
	return p.sst, nil
}

// Save writes the package back to its file.
func (p *Package) Save() error {
	if !p.writable {
		return fmt.Errorf("%w: %s", ErrNotWritable, p.path)
	}
	if err := p.flush(); err != nil {
		return err
	}
	file, err := os.OpenFile(filepath.Clean(p.path), os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := p.write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.path, err)
	}
	return file.Close()
}

// flush encodes modified parts into the part map.
func (p *Package) flush() error {
	for name, ws := range p.worksheets {
		if !ws.dirty {
			continue
		}
		data, err := ws.encode()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		p.putPart(name, data)
		ws.data, ws.dirty = data, false
		if err := ws.index(); err != nil {
			return err
		}
	}
	if p.workbook.dirty {
		data, err := p.workbook.encode()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", p.workbookPart, err)
		}
		p.putPart(p.workbookPart, data)
		wb, err := parseWorkbook(p.workbookPart, data)
		if err != nil {
			return err
		}
		p.workbook.data, p.workbook.span, p.workbook.dirty = wb.data, wb.span, false
	}
	if p.sst != nil && p.sstDirty {
		data, err := p.sst.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", p.sstPart, err)
		}
		p.putPart(p.sstPart, data)
		p.sstDirty = false
	}
	for _, part := range []struct {
		name  string
		v     any
		dirty *bool
	}{
		{relsPartFor(p.workbookPart), p.workbookRels, &p.relsDirty},
		{partContentTypes, p.types, &p.typesDirty},
	} {
		if !*part.dirty {
			continue
		}
		data, err := marshalPart(part.v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", part.name, err)
		}
		p.putPart(part.name, data)
		*part.dirty = false
	}
	return nil
}

func (p *Package) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range p.order {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return err
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Close releases the package. It does not save.
func (p *Package) Close() error {
	p.parts = nil
	p.order = nil
	p.worksheets = nil
	p.sst = nil
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileIsNotWritable reports whether path cannot be opened for writing.
func FileIsNotWritable(path string) bool {
	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY, 0)
	if err != nil {
		return true
	}
	defer f.Close()
	return false
}
