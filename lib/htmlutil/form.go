package htmlutil

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrFormNotFound is returned by ExtractForm when no form matched the target id.
var ErrFormNotFound = errors.New("form not found")

type InputType string

const (
	InputHidden   InputType = "hidden"
	InputCheckbox InputType = "checkbox"
	InputText     InputType = "text"
	// InputNone is the type of an <input> without a type attribute.
	InputNone InputType = ""
)

// FormField is a single <input> captured from a form, it keeps every
// attribute of the element so callers can look at things like `checked`.
type FormField struct {
	Name    string
	HasName bool
	Type    InputType
	Value   string
	Attrs   []html.Attribute
}

// Attr returns the raw value of an arbitrary attribute of the input.
func (f FormField) Attr(key string) (string, bool) {
	return Attr(f.Attrs, key)
}

func newFormField(attrs []html.Attribute) FormField {
	f := FormField{Attrs: attrs}
	f.Name, f.HasName = Attr(attrs, "name")
	f.Value, _ = Attr(attrs, "value")
	typ, _ := Attr(attrs, "type")
	f.Type = InputType(strings.ToLower(typ))
	return f
}

// FormExtractor is a Visitor that collects the inputs of the form whose id
// contains a target substring. Nested forms are not handled specially: any
// </form> ends the capture.
type FormExtractor struct {
	target string
	inside bool
	found  bool
	fields []FormField
}

func NewFormExtractor(targetId string) *FormExtractor {
	return &FormExtractor{target: targetId}
}

func (e *FormExtractor) StartTag(name string, attrs []html.Attribute) error {
	if name == "form" && AttrContains(attrs, "id", e.target) {
		e.inside = true
		e.found = true
	}
	if e.inside && name == "input" {
		e.fields = append(e.fields, newFormField(attrs))
	}
	return nil
}

func (e *FormExtractor) Text(string) error {
	return nil
}

func (e *FormExtractor) EndTag(name string) error {
	if name == "form" {
		e.inside = false
	}
	return nil
}

// Found reports whether a form matching the target was seen.
func (e *FormExtractor) Found() bool {
	return e.found
}

// Close returns the captured fields in document order.
func (e *FormExtractor) Close() []FormField {
	return e.fields
}

// ExtractForm scans r and returns the inputs of the form whose id contains targetId.
func ExtractForm(r io.Reader, targetId string) ([]FormField, error) {
	extractor := NewFormExtractor(targetId)
	err := Scan(r, extractor)
	if err != nil {
		return nil, err
	}
	if !extractor.Found() {
		return nil, ErrFormNotFound
	}
	return extractor.Close(), nil
}
