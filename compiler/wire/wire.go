// Package wire encodes syntax trees as self-describing documents for
// hand-off to tools that do not link the compiler: CBOR for machines, JSON
// for people.
package wire

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/chazu/prose/compiler"
	"github.com/fxamacker/cbor/v2"
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// Doc is one node of an encoded tree. Fields holds the node's exported
// fields by name; child nodes are nested Docs, lists are []any and
// operators and modifiers are their source spelling.
type Doc struct {
	Kind   string         `cbor:"kind" json:"kind"`
	Line   int            `cbor:"line" json:"line"`
	Column int            `cbor:"column" json:"column"`
	Fields map[string]any `cbor:"fields,omitempty" json:"fields,omitempty"`
}

// Child returns the node stored in field name, if any.
func (d *Doc) Child(name string) (*Doc, bool) {
	c, ok := d.Fields[name].(*Doc)
	return c, ok
}

// List returns the list stored in field name.
func (d *Doc) List(name string) []any {
	l, _ := d.Fields[name].([]any)
	return l
}

var nodeType = reflect.TypeOf((*compiler.Node)(nil)).Elem()

// FromNode converts a tree into documents. A nil node yields nil.
func FromNode(n compiler.Node) *Doc {
	if n == nil {
		return nil
	}
	rv := reflect.ValueOf(n)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	pos := n.Pos()
	d := &Doc{Kind: compiler.NodeKind(n), Line: pos.Line, Column: pos.Column}
	if fields := structFields(rv); len(fields) > 0 {
		d.Fields = fields
	}
	return d
}

func structFields(rv reflect.Value) map[string]any {
	t := rv.Type()
	fields := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "PosVal" {
			continue
		}
		fields[f.Name] = value(rv.Field(i))
	}
	return fields
}

func value(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Implements(nodeType) {
			return FromNode(rv.Interface().(compiler.Node))
		}
		return value(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = value(rv.Index(i))
		}
		return list
	case reflect.Struct:
		return structFields(rv)
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return rv.Interface()
}

// Marshal serializes a tree to canonical CBOR. Equal trees produce equal
// bytes.
func Marshal(n compiler.Node) ([]byte, error) {
	return MarshalDoc(FromNode(n))
}

// MarshalDoc serializes a document to canonical CBOR.
func MarshalDoc(d *Doc) ([]byte, error) {
	data, err := cborEncMode.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal tree: %w", err)
	}
	return data, nil
}

// MarshalJSON serializes a tree to indented JSON.
func MarshalJSON(n compiler.Node) ([]byte, error) {
	data, err := json.MarshalIndent(FromNode(n), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wire: marshal tree: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a document tree from CBOR bytes.
func Unmarshal(data []byte) (*Doc, error) {
	var d Doc
	if err := cborDecMode.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("wire: unmarshal tree: %w", err)
	}
	for k, v := range d.Fields {
		d.Fields[k] = restore(v)
	}
	return &d, nil
}

// restore turns decoded maps carrying a "kind" key back into Docs.
func restore(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if kind, ok := x["kind"].(string); ok {
			d := &Doc{Kind: kind, Line: toInt(x["line"]), Column: toInt(x["column"])}
			if fields, ok := x["fields"].(map[string]any); ok {
				for k, fv := range fields {
					fields[k] = restore(fv)
				}
				d.Fields = fields
			}
			return d
		}
		for k, fv := range x {
			x[k] = restore(fv)
		}
		return x
	case []any:
		for i := range x {
			x[i] = restore(x[i])
		}
		return x
	}
	return v
}

func toInt(v any) int {
	switch n := v.(type) {
	case uint64:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
