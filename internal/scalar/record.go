package scalar

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Named pairs a column name with a value
type Named struct {
	Name  string
	Value Scalar
}

// Record is an ordered list of named values, used for row input and group keys
type Record []Named

// Get returns the value named name
func (r Record) Get(name string) (Scalar, bool) {
	for _, n := range r {
		if n.Name == name {
			return n.Value, true
		}
	}
	return NA, false
}

// Names returns the names in order
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, n := range r {
		names[i] = n.Name
	}
	return names
}

// Values returns the values in order
func (r Record) Values() []Scalar {
	values := make([]Scalar, len(r))
	for i, n := range r {
		values[i] = n.Value
	}
	return values
}

// With returns a copy of r where name is set to v, replacing an existing
// entry in place or appending a new one.
func (r Record) With(name string, v Scalar) Record {
	out := make(Record, len(r), len(r)+1)
	copy(out, r)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = v
			return out
		}
	}
	return append(out, Named{Name: name, Value: v})
}

// Equal reports whether both records hold equal values under the same names in the same order
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i].Name != o[i].Name || !r[i].Value.Equal(o[i].Value) {
			return false
		}
	}
	return true
}

// Hash returns an xxhash over names and values
func (r Record) Hash() uint64 {
	d := xxhash.New()
	for _, n := range r {
		_, _ = d.WriteString(n.Name)
		_, _ = d.Write([]byte{0})
		n.Value.HashInto(d)
	}
	return d.Sum64()
}

func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n.Name)
		b.WriteByte('=')
		b.WriteString(n.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}
