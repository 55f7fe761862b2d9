// Package graph holds the in-memory object graph of one PDF document: the
// tagged union of object values, the store mapping identifiers to objects,
// and the page-tree walks built on top of it.
package graph

import "fmt"

// Ref uniquely identifies an indirect PDF object.
type Ref struct {
	Num int
	Gen int
}

func (r Ref) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the closed union of PDF object values. Consumers switch
// exhaustively over the concrete types; there is exactly one per variant.
type Object interface {
	Kind() string
}

// Null is the PDF null object.
type Null struct{}

func (Null) Kind() string { return "null" }

// Boolean is a PDF boolean.
type Boolean struct{ V bool }

func (Boolean) Kind() string { return "boolean" }

// Integer is a PDF integer. Integers and reals are distinct variants so that
// integers round-trip without decimal points.
type Integer struct{ V int64 }

func (Integer) Kind() string { return "integer" }

// Real is a PDF real number.
type Real struct{ V float64 }

func (Real) Kind() string { return "real" }

// String is a PDF string. Hex records whether the source spelled it in hex
// form, for round-trip fidelity.
type String struct {
	B   []byte
	Hex bool
}

func (String) Kind() string { return "string" }

// Name is a PDF name (written /Value).
type Name struct{ V string }

func (Name) Kind() string { return "name" }

// Array is an ordered list of objects.
type Array struct{ Items []Object }

func (*Array) Kind() string { return "array" }

func (a *Array) Len() int { return len(a.Items) }

func (a *Array) Get(i int) (Object, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return a.Items[i], true
}

func (a *Array) Append(items ...Object) { a.Items = append(a.Items, items...) }

// Dict maps names to objects.
type Dict struct{ KV map[string]Object }

func (*Dict) Kind() string { return "dict" }

func (d *Dict) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}

func (d *Dict) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}

func (d *Dict) Delete(key string) { delete(d.KV, key) }

func (d *Dict) Len() int { return len(d.KV) }

// ShallowClone copies the dictionary one level deep: values are shared,
// the key map is not.
func (d *Dict) ShallowClone() *Dict {
	out := NewDict()
	for k, v := range d.KV {
		out.KV[k] = v
	}
	return out
}

// Reference points at an indirect object in the owning store's namespace.
type Reference struct{ R Ref }

func (Reference) Kind() string { return "reference" }

// Stream is a stream object: its dictionary plus raw (possibly encoded)
// bytes. NoCompress marks streams that must be written uncompressed.
type Stream struct {
	Dict       *Dict
	Data       []byte
	NoCompress bool
}

func (*Stream) Kind() string { return "stream" }

// Constructors.

func Int(v int64) Integer            { return Integer{V: v} }
func Float(v float64) Real           { return Real{V: v} }
func Bool(v bool) Boolean            { return Boolean{V: v} }
func Str(b []byte) String            { return String{B: b} }
func Text(s string) String           { return String{B: []byte(s)} }
func NameOf(v string) Name           { return Name{V: v} }
func RefTo(r Ref) Reference          { return Reference{R: r} }
func NewArray(items ...Object) *Array { return &Array{Items: items} }
func NewDict() *Dict                 { return &Dict{KV: make(map[string]Object)} }

func NewStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = NewDict()
	}
	dict.Set("Length", Int(int64(len(data))))
	return &Stream{Dict: dict, Data: data}
}

// DictValue returns o as a *Dict, looking through a Stream's dictionary.
func DictValue(o Object) (*Dict, bool) {
	switch v := o.(type) {
	case *Dict:
		return v, true
	case *Stream:
		return v.Dict, true
	default:
		return nil, false
	}
}

// IntValue returns the integer value of o, accepting a Real with an
// integral interpretation.
func IntValue(o Object) (int64, bool) {
	switch v := o.(type) {
	case Integer:
		return v.V, true
	case Real:
		return int64(v.V), true
	default:
		return 0, false
	}
}

// FloatValue returns the numeric value of o as a float64.
func FloatValue(o Object) (float64, bool) {
	switch v := o.(type) {
	case Integer:
		return float64(v.V), true
	case Real:
		return v.V, true
	default:
		return 0, false
	}
}

// NameValue returns the name string of o.
func NameValue(o Object) (string, bool) {
	if n, ok := o.(Name); ok {
		return n.V, true
	}
	return "", false
}
