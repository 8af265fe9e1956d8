package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeOfficeDocument = nsRelationships + "/officeDocument"
	relTypeWorksheet      = nsRelationships + "/worksheet"
	relTypeSharedStrings  = nsRelationships + "/sharedStrings"

	contentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	contentTypeWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	contentTypeWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	contentTypeSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"

	partContentTypes = "[Content_Types].xml"
	partPackageRels  = "_rels/.rels"
	defaultWorkbook  = "xl/workbook.xml"
)

const (
	templateWorkbook = xml.Header +
		`<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRelationships + `"><sheets/></workbook>`
	templateWorksheet = xml.Header +
		`<worksheet xmlns="` + nsMain + `" xmlns:r="` + nsRelationships + `"><dimension ref="A1"/><sheetData/></worksheet>`
)

// contentTypes maps [Content_Types].xml.
type contentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func newContentTypes() *contentTypes {
	return &contentTypes{
		Defaults: []ctDefault{
			{Extension: "rels", ContentType: contentTypeRelationships},
			{Extension: "xml", ContentType: "application/xml"},
		},
	}
}

// setOverride registers the content type of a part, replacing any previous one.
func (ct *contentTypes) setOverride(part, contentType string) {
	name := "/" + part
	for i := range ct.Overrides {
		if strings.EqualFold(ct.Overrides[i].PartName, name) {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, ctOverride{PartName: name, ContentType: contentType})
}

// relationships maps a .rels part.
type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func (r *relationships) byID(id string) (relationship, bool) {
	for _, rel := range r.Items {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

func (r *relationships) byType(relType string) (relationship, bool) {
	for _, rel := range r.Items {
		if rel.Type == relType {
			return rel, true
		}
	}
	return relationship{}, false
}

// add appends a relationship with the next free rIdN and returns its id.
func (r *relationships) add(relType, target string) string {
	highest := 0
	for _, rel := range r.Items {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > highest {
			highest = n
		}
	}
	id := "rId" + strconv.Itoa(highest+1)
	r.Items = append(r.Items, relationship{ID: id, Type: relType, Target: target})
	return id
}

// relsPartFor returns the name of the part holding the relationships of part.
func relsPartFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveTarget resolves a relationship target against the part it belongs to.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(source), target), "/")
}

// relativeTarget is the inverse of resolveTarget for parts below the source's
// directory.
func relativeTarget(source, part string) string {
	dir := path.Dir(source)
	if dir == "." {
		return part
	}
	return strings.TrimPrefix(part, dir+"/")
}

func marshalPart(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// span is the byte range of an element inside a part.
type span struct {
	start, end int64
}

// decodeChildren walks the direct children of a part's root element. Each
// child whose local name is a key of targets is decoded into the mapped value
// (or skipped when it is nil) and its byte range is returned. Only the first
// occurrence of each name is considered.
func decodeChildren(part string, data []byte, targets map[string]any) (map[string]span, error) {
	found := make(map[string]span, len(targets))
	d := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	for len(found) < len(targets) {
		offset := d.InputOffset()
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, part, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			v, wanted := targets[t.Name.Local]
			if depth != 2 || !wanted {
				continue
			}
			if _, seen := found[t.Name.Local]; seen {
				continue
			}
			// Spliced elements are written back unprefixed.
			if !bytes.HasPrefix(data[offset:], []byte("<"+t.Name.Local)) {
				return nil, fmt.Errorf("%w: %s: prefixed %s element", ErrMalformedPart, part, t.Name.Local)
			}
			if v == nil {
				err = d.Skip()
			} else {
				err = d.DecodeElement(v, &t)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, part, err)
			}
			depth--
			found[t.Name.Local] = span{start: offset, end: d.InputOffset()}
		case xml.EndElement:
			depth--
		}
	}
	return found, nil
}

// encodeElement encodes v as an unprefixed element named local.
func encodeElement(local string, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: local}}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// splice replaces the given ranges of data, which must be ordered and
// disjoint.
func splice(data []byte, spans []span, replacements [][]byte) []byte {
	var buf bytes.Buffer
	var last int64
	for i, s := range spans {
		buf.Write(data[last:s.start])
		buf.Write(replacements[i])
		last = s.end
	}
	buf.Write(data[last:])
	return buf.Bytes()
}
