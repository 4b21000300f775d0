package value

import (
	"bytes"
	"encoding/hex"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
)

// KindBlob backs spec.md §3's "binary-blob" variant: an owned byte buffer,
// as produced by native I/O modules (out of this core's scope, spec.md
// §1) and read back by the compiled-dump codec (internal/dump, §6).

func init() {
	RegisterOps(KindBlob, &Ops{
		TypeName: "binary",
		Clone: func(v *Value) *Value {
			out := make([]byte, len(v.Blob))
			copy(out, v.Blob)
			return NewBlob(out)
		},
		IValue: func(v *Value) (int64, error) { return int64(len(v.Blob)), nil },
		LValue: func(v *Value) bool { return len(v.Blob) > 0 },
		SValue: func(v *Value) string { return hex.EncodeToString(v.Blob) },
		Cmp: func(a, b *Value) (int, error) {
			if b == nil || b.Kind != KindBlob {
				return 0, herror.Newf(herror.Syntax, "cannot compare binary with %s", TypeName(b))
			}
			return bytes.Compare(a.Blob, b.Blob), nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			if op != ast.OpAdd || b == nil || b.Kind != KindBlob {
				return nil, herror.Newf(herror.Syntax, "unsupported operator '%s' for binary", op)
			}
			out := make([]byte, 0, len(a.Blob)+len(b.Blob))
			out = append(out, a.Blob...)
			out = append(out, b.Blob...)
			return NewBlob(out), nil
		},
		At: func(c, idx *Value) (*Value, error) {
			i, err := IValue(idx)
			if err != nil {
				return nil, err
			}
			if i < 0 || int(i) >= len(c.Blob) {
				return nil, herror.Newf(herror.Generic, "binary index %d out of range", i)
			}
			return NewInt(int64(c.Blob[i])), nil
		},
		Set: func(c, idx, v *Value) error {
			i, err := IValue(idx)
			if err != nil {
				return err
			}
			if i < 0 || int(i) >= len(c.Blob) {
				return herror.Newf(herror.Generic, "binary index %d out of range", i)
			}
			n, err := IValue(v)
			if err != nil {
				return err
			}
			c.Blob[i] = byte(n)
			return nil
		},
		Push: func(c, v *Value) error {
			n, err := IValue(v)
			if err != nil {
				return err
			}
			c.Blob = append(c.Blob, byte(n))
			return nil
		},
	})
}
