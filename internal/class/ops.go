package class

import (
	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/value"
)

// RegisterOps installs the KindClass vtable. Called once by internal/vm
// during startup, after Exec has been assigned — see this package's doc
// comment for why this isn't a package-level init() like every other
// internal/value/ops_*.go.
func RegisterOps() {
	value.RegisterOps(value.KindClass, &value.Ops{
		TypeName: "class",
		Clone: func(v *value.Value) *value.Value {
			clone := value.NewClassInstance(v.Class.Name, v.Class.Parents)
			clone.Class.AttrOrder = append([]string(nil), v.Class.AttrOrder...)
			for name, attr := range v.Class.Attrs {
				clone.Class.Attrs[name] = &value.ClassAttribute{Access: attr.Access, Value: value.Clone(attr.Value)}
			}
			// Method bodies are immutable AST, shared by value copy of the
			// list structure, never duplicated (spec.md §4.A "Clone
			// semantics", §9 "method bodies never need per-instance
			// duplication").
			for name, variations := range v.Class.Methods {
				clone.Class.Methods[name] = variations
			}
			return clone
		},
		Children: func(v *value.Value) []*value.Value {
			out := make([]*value.Value, 0, len(v.Class.AttrOrder))
			for _, name := range v.Class.AttrOrder {
				out = append(out, v.Class.Attrs[name].Value)
			}
			return out
		},
		LValue: classLValue,
		IValue: func(v *value.Value) (int64, error) {
			r, ok, err := callDescriptor(v, descSize, nil)
			if !ok {
				return 0, herror.Newf(herror.Syntax, "class %s has no __size descriptor", v.Class.Name)
			}
			if err != nil {
				return 0, err
			}
			return value.IValue(r)
		},
		SValue: func(v *value.Value) string {
			r, ok, err := callDescriptor(v, descToString, nil)
			if !ok || err != nil {
				return "<" + v.Class.Name + ">"
			}
			return value.SValue(r)
		},
		Cmp: func(a, b *value.Value) (int, error) {
			r, err := CallOperator(a, "==", []*value.Value{b})
			if err != nil {
				// No overload declared: fall back to identity compare.
				if a == b {
					return 0, nil
				}
				return -1, nil
			}
			if value.IsTruthy(r) {
				return 0, nil
			}
			return -1, nil
		},
		BinOp: func(op ast.BinOp, a, b *value.Value) (*value.Value, error) {
			return CallOperator(a, string(op), []*value.Value{b})
		},
		UnaryOp: func(op ast.UnaryOp, a *value.Value) (*value.Value, error) {
			return CallOperator(a, string(op), nil)
		},
		Range: func(a, b *value.Value) (*value.Value, error) {
			return CallOperator(a, string(ast.OpRange), []*value.Value{b})
		},
		Regex: func(a, b *value.Value) (*value.Value, error) {
			return CallOperator(a, string(ast.OpRegex), []*value.Value{b})
		},
		Push: func(c, v *value.Value) error {
			_, err := CallOperator(c, "[]=", []*value.Value{v})
			return err
		},
		At: func(c, idx *value.Value) (*value.Value, error) {
			return CallOperator(c, "[]", []*value.Value{idx})
		},
		Set: func(c, idx, v *value.Value) error {
			_, err := CallOperator(c, "[]<", []*value.Value{idx, v})
			return err
		},
		DefineAttribute: func(c *value.Value, name string, access int, v *value.Value) error {
			if _, exists := c.Class.Attrs[name]; !exists {
				c.Class.AttrOrder = append(c.Class.AttrOrder, name)
			}
			c.Class.Attrs[name] = &value.ClassAttribute{Access: access, Value: v}
			return nil
		},
		GetAttribute: func(c *value.Value, name string) (*value.Value, error) {
			if attr, ok := c.Class.Attrs[name]; ok {
				if !canAccess(c, attr.Access) {
					return nil, herror.Newf(herror.Syntax, "attribute %s of class %s is not accessible here", name, c.Class.Name)
				}
				return attr.Value, nil
			}
			r, ok, err := callDescriptor(c, descAttribute, []*value.Value{value.NewString(name)})
			if ok {
				return r, err
			}
			return nil, herror.Newf(herror.Syntax, "class %s has no attribute %s", c.Class.Name, name)
		},
		SetAttribute: func(c *value.Value, name string, v *value.Value) error {
			if attr, ok := c.Class.Attrs[name]; ok {
				if !canAccess(c, attr.Access) {
					return herror.Newf(herror.Syntax, "attribute %s of class %s is not accessible here", name, c.Class.Name)
				}
				attr.Value = v
				return nil
			}
			if _, ok, err := callDescriptor(c, descAttribute, []*value.Value{value.NewString(name), v}); ok {
				return err
			}
			return herror.Newf(herror.Syntax, "class %s has no attribute %s", c.Class.Name, name)
		},
		DefineMethod: func(c *value.Value, name string, m *ast.MethodDeclaration) error {
			c.Class.Methods[name] = overrideVariation(c.Class.Methods[name], m)
			return nil
		},
		GetMethod: func(c *value.Value, name string, argc int) (*ast.MethodDeclaration, error) {
			m, ok := resolveOverload(c.Class.Methods, name, argc)
			if !ok {
				return nil, herror.Newf(herror.Syntax, "class %s has no method %s", c.Class.Name, name)
			}
			return m, nil
		},
		Free: func(v *value.Value) {
			// __expire is best-effort: a failure is recorded as a Warning on
			// the wired trace (when there is one) and swallowed rather than
			// cascading into teardown (spec.md §7).
			if _, _, err := callDescriptor(v, descExpire, nil); err != nil && Warnings != nil {
				Warnings.Warn("__expire of class "+v.Class.Name+" failed: "+err.Error(), herror.Position{})
			}
		},
	})
}

// classLValue drives ob_lvalue for a class instance: __size if declared
// (non-zero is true), else true (an instantiated object is always
// truthy), matching spec.md §4.F ("__size ... drives ob_ivalue/ob_fvalue/
// ob_lvalue").
func classLValue(v *value.Value) bool {
	r, ok, err := callDescriptor(v, descSize, nil)
	if !ok || err != nil {
		return true
	}
	return value.IsTruthy(r)
}
