package value

// MapPair is one (key, value) binding of an OrderedMap, in insertion order.
type MapPair struct {
	Key   *Value
	Value *Value
}

// OrderedMap backs the KindMap variant (spec.md §3 "Map"): an
// insertion-ordered sequence of pairs, key equality defined by the key's
// compare vtable slot, duplicate keys forbidden (insertion overwrites).
type OrderedMap struct {
	pairs []MapPair
}

// NewOrderedMap returns an empty map.
func NewOrderedMap() *OrderedMap { return &OrderedMap{} }

func (m *OrderedMap) indexOf(key *Value) int {
	for i := range m.pairs {
		if c, err := Cmp(m.pairs[i].Key, key); err == nil && c == 0 {
			return i
		}
	}
	return -1
}

// Put inserts key->val, or overwrites val if key already exists
// (spec.md §3 "Duplicate keys are forbidden: insertion overwrites the
// prior binding"). Returns the replaced value, or nil if this was a fresh
// insertion.
func (m *OrderedMap) Put(key, val *Value) *Value {
	if i := m.indexOf(key); i >= 0 {
		old := m.pairs[i].Value
		m.pairs[i].Value = val
		return old
	}
	m.pairs = append(m.pairs, MapPair{Key: key, Value: val})
	return nil
}

// Get looks up key, returning (value, true) if present.
func (m *OrderedMap) Get(key *Value) (*Value, bool) {
	if i := m.indexOf(key); i >= 0 {
		return m.pairs[i].Value, true
	}
	return nil, false
}

// Remove deletes key, returning the removed value if it was present.
func (m *OrderedMap) Remove(key *Value) *Value {
	i := m.indexOf(key)
	if i < 0 {
		return nil
	}
	old := m.pairs[i].Value
	m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
	return old
}

// Len is the number of bindings.
func (m *OrderedMap) Len() int { return len(m.pairs) }

// Pairs returns the bindings in insertion order. The returned slice is a
// fresh copy of the header and must not be mutated to reorder the map;
// foreach snapshots it at loop start (spec.md §9 Open Questions).
func (m *OrderedMap) Pairs() []MapPair {
	out := make([]MapPair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

func newMapValue(m *OrderedMap) *Value {
	return &Value{Kind: KindMap, Map: m}
}

// NewMap wraps an OrderedMap as a Value.
func NewMap(m *OrderedMap) *Value { return newMapValue(m) }

func init() {
	RegisterOps(KindMap, &Ops{
		TypeName: "map",
		Clone: func(v *Value) *Value {
			clone := NewOrderedMap()
			for _, p := range v.Map.Pairs() {
				clone.Put(Clone(p.Key), Clone(p.Value))
			}
			return newMapValue(clone)
		},
		Children: func(v *Value) []*Value {
			var out []*Value
			for _, p := range v.Map.Pairs() {
				out = append(out, p.Key, p.Value)
			}
			return out
		},
		LValue: func(v *Value) bool { return v.Map.Len() > 0 },
		SValue: func(v *Value) string {
			s := "{"
			for i, p := range v.Map.Pairs() {
				if i > 0 {
					s += ", "
				}
				s += SValue(p.Key) + " => " + SValue(p.Value)
			}
			return s + "}"
		},
		// Maps have no arithmetic; comparing two maps compares elementwise
		// in insertion order (spec.md §4.A).
		Cmp: func(a, b *Value) (int, error) {
			if b == nil || b.Kind != KindMap {
				return -1, nil
			}
			pa, pb := a.Map.Pairs(), b.Map.Pairs()
			if len(pa) != len(pb) {
				if len(pa) < len(pb) {
					return -1, nil
				}
				return 1, nil
			}
			for i := range pa {
				if c, err := Cmp(pa[i].Key, pb[i].Key); err != nil || c != 0 {
					if err != nil {
						return 0, err
					}
					return c, nil
				}
				if c, err := Cmp(pa[i].Value, pb[i].Value); err != nil || c != 0 {
					if err != nil {
						return 0, err
					}
					return c, nil
				}
			}
			return 0, nil
		},
		At: func(c, idx *Value) (*Value, error) {
			v, ok := c.Map.Get(idx)
			if !ok {
				return NewNil(), nil
			}
			return v, nil
		},
		Set: func(c, idx, v *Value) error {
			c.Map.Put(idx, v)
			return nil
		},
		Remove: func(c, idx *Value) (*Value, error) {
			return c.Map.Remove(idx), nil
		},
	})
}
