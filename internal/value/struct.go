package value

import (
	"strings"

	"github.com/hybris-lang/hybris/internal/herror"
)

// StructInstance backs the KindStruct variant: spec.md §3's "structure" is
// a fixed-field record with no methods and no inheritance, distinct from a
// class instance. Fields keep the declaration order so SValue and
// iteration are deterministic.
type StructInstance struct {
	Name   string
	Fields []string
	Values map[string]*Value
}

func newStructValue(s *StructInstance) *Value { return &Value{Kind: KindStruct, Struct: s} }

// NewStruct builds a structure instance with every declared field bound to
// nil, matching spec.md §3 "Structure" ("fields default to nil until set").
func NewStruct(name string, fields []string) *Value {
	s := &StructInstance{Name: name, Fields: append([]string(nil), fields...), Values: make(map[string]*Value, len(fields))}
	for _, f := range fields {
		s.Values[f] = NewNil()
	}
	return newStructValue(s)
}

func init() {
	RegisterOps(KindStruct, &Ops{
		TypeName: "structure",
		Clone: func(v *Value) *Value {
			out := &StructInstance{Name: v.Struct.Name, Fields: append([]string(nil), v.Struct.Fields...), Values: make(map[string]*Value, len(v.Struct.Fields))}
			for _, f := range v.Struct.Fields {
				out.Values[f] = Clone(v.Struct.Values[f])
			}
			return newStructValue(out)
		},
		Children: func(v *Value) []*Value {
			out := make([]*Value, 0, len(v.Struct.Fields))
			for _, f := range v.Struct.Fields {
				out = append(out, v.Struct.Values[f])
			}
			return out
		},
		LValue: func(v *Value) bool { return true },
		SValue: func(v *Value) string {
			parts := make([]string, 0, len(v.Struct.Fields))
			for _, f := range v.Struct.Fields {
				parts = append(parts, f+" = "+SValue(v.Struct.Values[f]))
			}
			return v.Struct.Name + " { " + strings.Join(parts, ", ") + " }"
		},
		Cmp: func(a, b *Value) (int, error) {
			if b == nil || b.Kind != KindStruct || b.Struct.Name != a.Struct.Name {
				return 0, herror.Newf(herror.Syntax, "cannot compare structure %s with %s", a.Struct.Name, TypeName(b))
			}
			for _, f := range a.Struct.Fields {
				c, err := Cmp(a.Struct.Values[f], b.Struct.Values[f])
				if err != nil {
					return 0, err
				}
				if c != 0 {
					return c, nil
				}
			}
			return 0, nil
		},
		DefineAttribute: func(c *Value, name string, access int, v *Value) error {
			return herror.Newf(herror.Syntax, "structure %s has fixed fields, cannot define %s", c.Struct.Name, name)
		},
		GetAttribute: func(c *Value, name string) (*Value, error) {
			v, ok := c.Struct.Values[name]
			if !ok {
				return nil, herror.Newf(herror.Generic, "structure %s has no field %s", c.Struct.Name, name)
			}
			return v, nil
		},
		SetAttribute: func(c *Value, name string, v *Value) error {
			if _, ok := c.Struct.Values[name]; !ok {
				return herror.Newf(herror.Generic, "structure %s has no field %s", c.Struct.Name, name)
			}
			c.Struct.Values[name] = v
			return nil
		},
	})
}
