// Package writer serializes a graph.Store back into PDF file syntax.
package writer

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"golang.org/x/exp/maps"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

// Serialize writes one object value in file syntax. Dictionary keys come
// out sorted so identical graphs always produce identical bytes.
func Serialize(w io.Writer, obj graph.Object) error {
	switch v := obj.(type) {
	case nil, graph.Null:
		_, err := io.WriteString(w, "null")
		return err
	case graph.Boolean:
		_, err := io.WriteString(w, strconv.FormatBool(v.V))
		return err
	case graph.Integer:
		_, err := io.WriteString(w, strconv.FormatInt(v.V, 10))
		return err
	case graph.Real:
		_, err := io.WriteString(w, formatReal(v.V))
		return err
	case graph.String:
		return serializeString(w, v)
	case graph.Name:
		return serializeName(w, v.V)
	case graph.Reference:
		_, err := fmt.Fprintf(w, "%d %d R", v.R.Num, v.R.Gen)
		return err
	case *graph.Array:
		return serializeArray(w, v)
	case *graph.Dict:
		return serializeDict(w, v)
	case *graph.Stream:
		return serializeStream(w, v)
	default:
		return fmt.Errorf("cannot serialize %T", obj)
	}
}

// formatReal keeps the shortest decimal form PDF syntax accepts: no
// exponents, no trailing zeros.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func serializeName(w io.Writer, name string) error {
	out := []byte{'/'}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= 0x20 || c >= 0x7F || isDelimByte(c) || c == '#' {
			out = append(out, fmt.Sprintf("#%02X", c)...)
			continue
		}
		out = append(out, c)
	}
	_, err := w.Write(out)
	return err
}

func serializeString(w io.Writer, s graph.String) error {
	if s.Hex {
		out := make([]byte, 0, len(s.B)*2+2)
		out = append(out, '<')
		for _, c := range s.B {
			out = append(out, fmt.Sprintf("%02X", c)...)
		}
		out = append(out, '>')
		_, err := w.Write(out)
		return err
	}
	out := make([]byte, 0, len(s.B)+2)
	out = append(out, '(')
	for _, c := range s.B {
		switch c {
		case '(', ')', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	out = append(out, ')')
	_, err := w.Write(out)
	return err
}

func serializeArray(w io.Writer, arr *graph.Array) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, item := range arr.Items {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := Serialize(w, item); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func serializeDict(w io.Writer, dict *graph.Dict) error {
	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	keys := maps.Keys(dict.KV)
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := serializeName(w, key); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := Serialize(w, dict.KV[key]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, " >>")
	return err
}

func serializeStream(w io.Writer, st *graph.Stream) error {
	dict := st.Dict.ShallowClone()
	dict.Set("Length", graph.Int(int64(len(st.Data))))
	if err := serializeDict(w, dict); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(st.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

func isDelimByte(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}
