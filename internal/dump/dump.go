// Package dump implements the §6 compiled-dump binary codec: a
// round-trip-exact encoding of a value tree for scalar types, and an
// insertion-order-preserving encoding for vector/map containers.
//
// This is a pass-through concern (spec.md §9: "the on-disk compiled
// bytecode/XML dump format is mentioned as a pass-through concern; the
// evaluator does not depend on it") used by a module loader to persist
// constant tables without re-parsing source. Class instances, structure
// instances and references are deliberately unsupported: a class instance
// carries live method-table pointers into the AST, a reference is an
// alias into another value's identity, and neither survives being
// flattened to bytes and read back in a different process — exactly the
// values that were never candidates for disk persistence in the first
// place.
package dump

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/value"
)

// tag is the on-disk type-tag byte. Deliberately its own enum rather than
// a cast of value.Kind: the wire format must stay stable even if Kind's
// numbering ever changes.
type tag byte

const (
	tagNil tag = iota
	tagInt
	tagFloat
	tagChar
	tagBool
	tagString
	tagBlob
	tagVector
	tagMap
)

func tagOf(v *value.Value) (tag, error) {
	switch v.Kind {
	case value.KindNil:
		return tagNil, nil
	case value.KindInt:
		return tagInt, nil
	case value.KindFloat:
		return tagFloat, nil
	case value.KindChar:
		return tagChar, nil
	case value.KindBool:
		return tagBool, nil
	case value.KindString:
		return tagString, nil
	case value.KindBlob:
		return tagBlob, nil
	case value.KindVector:
		return tagVector, nil
	case value.KindMap:
		return tagMap, nil
	default:
		return 0, herror.Newf(herror.Generic, "cannot dump value of type %s", value.TypeName(v))
	}
}

// Encode writes v's compiled-dump encoding to w.
func Encode(w io.Writer, v *value.Value) error {
	t, err := tagOf(v)
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byte(t)); err != nil {
		return err
	}
	switch t {
	case tagNil:
		return nil
	case tagInt:
		return binary.Write(w, binary.LittleEndian, v.I)
	case tagFloat:
		return binary.Write(w, binary.LittleEndian, v.F)
	case tagChar:
		return binary.Write(w, binary.LittleEndian, v.C)
	case tagBool:
		b := byte(0)
		if v.B {
			b = 1
		}
		return binary.Write(w, binary.LittleEndian, b)
	case tagString:
		return writeBytes(w, []byte(v.S))
	case tagBlob:
		return writeBytes(w, v.Blob)
	case tagVector:
		if err := binary.Write(w, binary.LittleEndian, uint32(len(v.Vec))); err != nil {
			return err
		}
		for _, el := range v.Vec {
			if err := Encode(w, el); err != nil {
				return err
			}
		}
		return nil
	case tagMap:
		pairs := v.Map.Pairs()
		if err := binary.Write(w, binary.LittleEndian, uint32(len(pairs))); err != nil {
			return err
		}
		for _, p := range pairs {
			if err := Encode(w, p.Key); err != nil {
				return err
			}
			if err := Encode(w, p.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return herror.Newf(herror.Generic, "unreachable tag %d", t)
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// Decode reads one value's compiled-dump encoding from r. The returned
// value has refcount 0 and is not yet GC-registered — the caller (the
// module loader) registers it with its arena exactly as any other
// freshly-built value.
func Decode(r io.Reader) (*value.Value, error) {
	var t byte
	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return nil, err
	}
	switch tag(t) {
	case tagNil:
		return value.NewNil(), nil
	case tagInt:
		var i int64
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			return nil, err
		}
		return value.NewInt(i), nil
	case tagFloat:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return nil, err
		}
		return value.NewFloat(f), nil
	case tagChar:
		var c byte
		if err := binary.Read(r, binary.LittleEndian, &c); err != nil {
			return nil, err
		}
		return value.NewChar(c), nil
	case tagBool:
		var b byte
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return nil, err
		}
		return value.NewBool(b != 0), nil
	case tagString:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return value.NewString(string(b)), nil
	case tagBlob:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return value.NewBlob(b), nil
	case tagVector:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		elems := make([]*value.Value, n)
		for i := range elems {
			el, err := Decode(r)
			if err != nil {
				return nil, err
			}
			elems[i] = el
		}
		return value.NewVector(elems), nil
	case tagMap:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		m := value.NewOrderedMap()
		for i := uint32(0); i < n; i++ {
			k, err := Decode(r)
			if err != nil {
				return nil, err
			}
			v, err := Decode(r)
			if err != nil {
				return nil, err
			}
			m.Put(k, v)
		}
		return value.NewMap(m), nil
	}
	return nil, herror.Newf(herror.Generic, "corrupt dump: unknown type tag %d", t)
}

func readBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeToBytes is a convenience wrapper returning the encoded bytes
// directly, for callers that don't already hold an io.Writer (e.g. a
// module loader writing a whole constant table to a single file).
func EncodeToBytes(v *value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFromBytes is the inverse of EncodeToBytes.
func DecodeFromBytes(b []byte) (*value.Value, error) {
	return Decode(bytes.NewReader(b))
}
