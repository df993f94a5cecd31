// Package series provides the typed, missing-aware column used by DataFrame.
//
// A Series is either unresolved (every value is untyped NA) or resolved to a
// single kind. It is promoted exactly once, when the first typed value or
// column is appended, and existing NA entries become that kind's missing
// value. Series is not safe for concurrent mutation; DataFrame guards it.
package series

import (
	"fmt"
	"strings"

	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/logging"
	"github.com/paveg/rframe/internal/scalar"
	"go.uber.org/zap"
)

const previewLimit = 10

// Series represents a homogeneous column of scalars
type Series struct {
	kind   scalar.Kind
	levels *scalar.Levels
	values []scalar.Scalar
}

// New creates an empty series. KindUntyped yields an unresolved series.
func New(kind scalar.Kind) *Series {
	return &Series{kind: kind}
}

// NewFactor creates an empty factor series over levels
func NewFactor(levels *scalar.Levels) *Series {
	return &Series{kind: scalar.KindFactor, levels: levels}
}

// Of creates a series from values, resolving its kind from the first typed value
func Of(values ...scalar.Scalar) (*Series, error) {
	s := &Series{values: make([]scalar.Scalar, 0, len(values))}
	for _, v := range values {
		if err := s.Append(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustOf is like Of but panics on a kind mismatch
func MustOf(values ...scalar.Scalar) *Series {
	s, err := Of(values...)
	if err != nil {
		panic(err)
	}
	return s
}

// Missing creates a series of n missing values of kind
func Missing(kind scalar.Kind, n int) *Series {
	s := New(kind)
	s.Pad(n)
	return s
}

// Rep creates a series repeating v n times
func Rep(v scalar.Scalar, n int) *Series {
	s := &Series{kind: v.Kind(), levels: v.Levels(), values: make([]scalar.Scalar, n)}
	for i := range s.values {
		s.values[i] = v
	}
	return s
}

// Singleton creates a series holding only v
func Singleton(v scalar.Scalar) *Series {
	return Rep(v, 1)
}

// Padded creates a series of the given length whose last value is v and
// whose earlier values are missing. A length below 1 yields a singleton.
func Padded(v scalar.Scalar, length int) *Series {
	if length < 1 {
		return Singleton(v)
	}
	s := &Series{kind: v.Kind(), levels: v.Levels(), values: make([]scalar.Scalar, length)}
	na := scalar.Missing(v.Kind())
	for i := 0; i < length-1; i++ {
		s.values[i] = na
	}
	s.values[length-1] = v
	return s
}

// Len returns the number of values
func (s *Series) Len() int {
	return len(s.values)
}

// Kind returns the column kind, KindUntyped while unresolved
func (s *Series) Kind() scalar.Kind {
	return s.kind
}

// Resolved reports whether the column has a concrete kind
func (s *Series) Resolved() bool {
	return s.kind != scalar.KindUntyped
}

// Levels returns the factor level set, nil for other kinds
func (s *Series) Levels() *scalar.Levels {
	return s.levels
}

// At returns the value at index i. It panics when i is out of range.
func (s *Series) At(i int) scalar.Scalar {
	return s.values[i]
}

// Values returns a copy of the values
func (s *Series) Values() []scalar.Scalar {
	out := make([]scalar.Scalar, len(s.values))
	copy(out, s.values)
	return out
}

// Coerce returns v as it would be stored by Append, without modifying s
func (s *Series) Coerce(v scalar.Scalar) (scalar.Scalar, error) {
	if s.kind == scalar.KindUntyped {
		return v, nil
	}
	c, err := v.As(s.kind)
	if err != nil {
		return scalar.NA, errors.NewTypeMismatchError("Append", "", s.kind.String(), v.Kind().String())
	}
	if s.kind == scalar.KindFactor {
		return s.remap(c)
	}
	return c, nil
}

// remap moves a factor value onto this column's level set by label
func (s *Series) remap(v scalar.Scalar) (scalar.Scalar, error) {
	if s.levels == nil || v.Levels() == s.levels {
		return v, nil
	}
	if v.IsMissing() {
		return scalar.Factor(scalar.NAInteger, s.levels), nil
	}
	code, ok := s.levels.Code(v.Label())
	if !ok {
		return scalar.NA, errors.NewIncompatibleTypeError("Append", "",
			fmt.Sprintf("level %q is not one of %v", v.Label(), s.levels.Labels()))
	}
	return scalar.Factor(code, s.levels), nil
}

// promote resolves an unresolved series to kind
func (s *Series) promote(kind scalar.Kind, levels *scalar.Levels) {
	if s.kind != scalar.KindUntyped || kind == scalar.KindUntyped {
		return
	}
	s.kind = kind
	s.levels = levels
	na := scalar.Missing(kind)
	for i := range s.values {
		s.values[i] = na
	}
}

// Append adds v, converting it to the column kind. An unresolved column is
// promoted to the kind of the first typed value.
func (s *Series) Append(v scalar.Scalar) error {
	c, err := s.Coerce(v)
	if err != nil {
		return err
	}
	s.promote(c.Kind(), c.Levels())
	if s.kind == scalar.KindFactor && s.levels == nil {
		s.levels = c.Levels()
	}
	s.values = append(s.values, c)
	return nil
}

// AppendAll adds every value of other. Kinds must match exactly unless
// either side is unresolved.
func (s *Series) AppendAll(other *Series) error {
	if other.kind == scalar.KindUntyped {
		s.Pad(other.Len())
		return nil
	}
	if s.kind != scalar.KindUntyped && s.kind != other.kind {
		return errors.NewTypeMismatchError("AppendAll", "", s.kind.String(), other.kind.String())
	}
	incoming := other.values
	if s.kind == scalar.KindFactor && s.levels != nil && other.levels != s.levels {
		incoming = make([]scalar.Scalar, len(other.values))
		for i, v := range other.values {
			c, err := s.remap(v)
			if err != nil {
				return err
			}
			incoming[i] = c
		}
	}
	s.promote(other.kind, other.levels)
	if s.kind == scalar.KindFactor && s.levels == nil {
		s.levels = other.levels
	}
	s.values = append(s.values, incoming...)
	return nil
}

// Fill appends v n times
func (s *Series) Fill(v scalar.Scalar, n int) error {
	if n <= 0 {
		return nil
	}
	if err := s.Append(v); err != nil {
		return err
	}
	last := s.values[len(s.values)-1]
	for i := 1; i < n; i++ {
		s.values = append(s.values, last)
	}
	return nil
}

// Pad appends n missing values of the column kind
func (s *Series) Pad(n int) {
	na := scalar.Missing(s.kind)
	for i := 0; i < n; i++ {
		s.values = append(s.values, na)
	}
}

// Subset returns the values whose mask entry is true. Rows beyond the end
// of a shorter mask are dropped; a longer mask is a BoundaryError.
func (s *Series) Subset(mask []bool) (*Series, error) {
	if len(mask) > len(s.values) {
		return nil, errors.NewBoundaryError("Subset", len(mask)-1, len(s.values))
	}
	out := &Series{kind: s.kind, levels: s.levels}
	for i, keep := range mask {
		if keep {
			out.values = append(out.values, s.values[i])
		}
	}
	return out, nil
}

// Take returns the values at indices, in the order given
func (s *Series) Take(indices []int) (*Series, error) {
	out := &Series{kind: s.kind, levels: s.levels, values: make([]scalar.Scalar, len(indices))}
	for i, idx := range indices {
		if idx < 0 || idx >= len(s.values) {
			return nil, errors.NewBoundaryError("Take", idx, len(s.values))
		}
		out.values[i] = s.values[idx]
	}
	return out, nil
}

// Matches returns a mask of the rows equal to v. A value that cannot be
// converted to the column kind matches nothing.
func (s *Series) Matches(v scalar.Scalar) []bool {
	mask := make([]bool, len(s.values))
	c, err := s.Coerce(v)
	if err != nil {
		return mask
	}
	for i, x := range s.values {
		mask[i] = x.Equal(c)
	}
	return mask
}

// MatchesFunc returns a mask of the rows accepted by pred. If pred panics the
// current and remaining rows are treated as not matching.
func (s *Series) MatchesFunc(pred func(scalar.Scalar) bool) (mask []bool) {
	mask = make([]bool, len(s.values))
	defer func() {
		if r := recover(); r != nil {
			logging.Named("series").Debug("predicate did not complete, assuming no match",
				zap.Any("panic", r), zap.Stringer("kind", s.kind))
		}
	}()
	for i, x := range s.values {
		mask[i] = pred(x)
	}
	return mask
}

// Distinct returns the unique values in first-seen order
func (s *Series) Distinct() *Series {
	out := &Series{kind: s.kind, levels: s.levels}
	seen := make(map[scalar.Key]struct{}, len(s.values))
	for _, v := range s.values {
		k := v.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out.values = append(out.values, v)
	}
	return out
}

// As returns s viewed as kind. An unresolved column becomes all missing of
// kind; any other mismatch is an IncompatibleType error.
func (s *Series) As(kind scalar.Kind) (*Series, error) {
	switch {
	case s.kind == kind:
		return s, nil
	case s.kind == scalar.KindUntyped:
		return Missing(kind, len(s.values)), nil
	}
	return nil, errors.NewTypeMismatchError("As", "", kind.String(), s.kind.String())
}

// Cast converts every value to kind using the scalar coercion rules
func (s *Series) Cast(kind scalar.Kind) (*Series, error) {
	if s.kind == kind {
		return s.Clone(), nil
	}
	out := New(kind)
	for _, v := range s.values {
		c, err := v.As(kind)
		if err != nil {
			return nil, errors.NewTypeMismatchError("Cast", "", kind.String(), s.kind.String())
		}
		out.values = append(out.values, c)
	}
	return out, nil
}

// Map applies fn to every value. Results must share one kind, missing
// results of other kinds are accepted as that kind's missing value. An
// empty series keeps its kind.
func (s *Series) Map(fn func(scalar.Scalar) scalar.Scalar) (*Series, error) {
	if len(s.values) == 0 {
		return &Series{kind: s.kind, levels: s.levels}, nil
	}
	out := &Series{values: make([]scalar.Scalar, 0, len(s.values))}
	for i, v := range s.values {
		r := fn(v)
		if r.IsMissing() && out.kind != scalar.KindUntyped {
			r = scalar.Missing(out.kind)
		}
		if err := out.Append(r); err != nil {
			return nil, fmt.Errorf("mapping row %d: %w", i, err)
		}
	}
	return out, nil
}

// Slice returns the values in [start, end)
func (s *Series) Slice(start, end int) (*Series, error) {
	if start < 0 {
		return nil, errors.NewBoundaryError("Slice", start, len(s.values))
	}
	if end > len(s.values) || start > end {
		return nil, errors.NewBoundaryError("Slice", end, len(s.values))
	}
	out := &Series{kind: s.kind, levels: s.levels, values: make([]scalar.Scalar, end-start)}
	copy(out.values, s.values[start:end])
	return out, nil
}

// Clone returns an independent copy
func (s *Series) Clone() *Series {
	return &Series{kind: s.kind, levels: s.levels, values: s.Values()}
}

// Equal reports whether both series have the same kind and equal values
func (s *Series) Equal(o *Series) bool {
	if s == o {
		return true
	}
	if o == nil || s.kind != o.kind || len(s.values) != len(o.values) {
		return false
	}
	for i := range s.values {
		if !s.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

// String returns a short preview such as <integer[3]>{1, 2, NA}
func (s *Series) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s[%d]>{", s.kind, len(s.values))
	for i, v := range s.values {
		if i == previewLimit {
			b.WriteString(", ...")
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte('}')
	return b.String()
}
