package scalar

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/paveg/rframe/internal/errors"
)

const (
	// NAInteger is the wire value of a missing integer, logical or factor code
	NAInteger int32 = math.MinInt32
	// NANumberBits is the bit pattern of a missing number
	NANumberBits uint64 = 0x7FF00000000007A2
	// NALabel is the printed form of every missing value
	NALabel = "NA"
	// DateLayout is the textual date format accepted by ParseDate
	DateLayout = "2006-01-02"

	secondsPerDay = 86400
	minYear       = 1
	maxYear       = 9999
)

// NANumber returns the float64 carrying the missing-number payload
func NANumber() float64 {
	return math.Float64frombits(NANumberBits)
}

// IsNANumber reports whether f carries the missing-number payload.
// Ordinary NaN values are not missing.
func IsNANumber(f float64) bool {
	return math.Float64bits(f) == NANumberBits
}

// Scalar is a single value of one kind, or that kind's missing value
type Scalar struct {
	kind   Kind
	valid  bool
	num    int64 // integer, logical 0/1, date days, factor code
	f      float64
	str    string // text or factor label
	levels *Levels
}

// NA is the untyped missing value
var NA = Scalar{}

// Missing returns the missing value of kind k
func Missing(k Kind) Scalar {
	return Scalar{kind: k}
}

// Integer returns an integer scalar. math.MinInt32 is the missing integer.
func Integer(v int32) Scalar {
	if v == NAInteger {
		return Missing(KindInteger)
	}
	return Scalar{kind: KindInteger, valid: true, num: int64(v)}
}

// IntegerPtr returns an integer scalar, missing when v is nil
func IntegerPtr(v *int32) Scalar {
	if v == nil {
		return Missing(KindInteger)
	}
	return Integer(*v)
}

// Number returns a numeric scalar. NaN and ±Inf are present values; only the
// NANumberBits payload is missing.
func Number(v float64) Scalar {
	if IsNANumber(v) {
		return Missing(KindNumber)
	}
	return Scalar{kind: KindNumber, valid: true, f: v}
}

// NumberPtr returns a numeric scalar, missing when v is nil
func NumberPtr(v *float64) Scalar {
	if v == nil {
		return Missing(KindNumber)
	}
	return Number(*v)
}

// Text returns a text scalar
func Text(v string) Scalar {
	return Scalar{kind: KindText, valid: true, str: v}
}

// TextPtr returns a text scalar, missing when v is nil
func TextPtr(v *string) Scalar {
	if v == nil {
		return Missing(KindText)
	}
	return Text(*v)
}

// Logical returns a logical scalar
func Logical(v bool) Scalar {
	s := Scalar{kind: KindLogical, valid: true}
	if v {
		s.num = 1
	}
	return s
}

// LogicalPtr returns a logical scalar, missing when v is nil
func LogicalPtr(v *bool) Scalar {
	if v == nil {
		return Missing(KindLogical)
	}
	return Logical(*v)
}

// LogicalInt returns a logical scalar from its integer wire form:
// math.MinInt32 is missing, 0 is false and anything else is true.
func LogicalInt(v int32) Scalar {
	if v == NAInteger {
		return Missing(KindLogical)
	}
	return Logical(v != 0)
}

// Date returns the UTC calendar date of t. Years outside
// 1..9999 produce a missing date.
func Date(t time.Time) Scalar {
	y, m, d := t.UTC().Date()
	if y < minYear || y > maxYear {
		return Missing(KindDate)
	}
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Scalar{kind: KindDate, valid: true, num: midnight.Unix() / secondsPerDay}
}

// DatePtr returns a date scalar, missing when t is nil
func DatePtr(t *time.Time) Scalar {
	if t == nil {
		return Missing(KindDate)
	}
	return Date(*t)
}

// DateDays returns a date from days since 1970-01-01
func DateDays(days int32) Scalar {
	if days == NAInteger {
		return Missing(KindDate)
	}
	return Date(time.Unix(int64(days)*secondsPerDay, 0).UTC())
}

// ParseDate parses a yyyy-mm-dd string. Negative years and unparsable
// input produce a missing date rather than an error.
func ParseDate(v string) Scalar {
	if len(v) > 0 && v[0] == '-' {
		return Missing(KindDate)
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return Missing(KindDate)
	}
	return Date(t)
}

// Factor returns the factor value with the given 1-based code. Codes outside
// the level set produce a missing factor that keeps the levels.
func Factor(code int32, levels *Levels) Scalar {
	label, ok := levels.Label(code)
	if !ok {
		return Scalar{kind: KindFactor, levels: levels}
	}
	return Scalar{kind: KindFactor, valid: true, num: int64(code), str: label, levels: levels}
}

// Kind returns the scalar's kind
func (s Scalar) Kind() Kind { return s.kind }

// IsMissing reports whether s is its kind's missing value
func (s Scalar) IsMissing() bool { return !s.valid }

// Get returns the host value of s, or nil when missing. Factors yield their label.
func (s Scalar) Get() any {
	if !s.valid {
		return nil
	}
	switch s.kind {
	case KindInteger:
		return int32(s.num)
	case KindNumber:
		return s.f
	case KindText:
		return s.str
	case KindLogical:
		return s.num != 0
	case KindDate:
		return s.dateTime()
	case KindFactor:
		return s.str
	}
	return nil
}

// Int returns the integer value. ok is false when s is missing or not an integer.
func (s Scalar) Int() (int32, bool) {
	if s.kind != KindInteger || !s.valid {
		return 0, false
	}
	return int32(s.num), true
}

// Float returns the numeric value. ok is false when s is missing or not a number.
func (s Scalar) Float() (float64, bool) {
	if s.kind != KindNumber || !s.valid {
		return 0, false
	}
	return s.f, true
}

// Str returns the text value. ok is false when s is missing or not text.
func (s Scalar) Str() (string, bool) {
	if s.kind != KindText || !s.valid {
		return "", false
	}
	return s.str, true
}

// Bool returns the logical value. ok is false when s is missing or not logical.
func (s Scalar) Bool() (bool, bool) {
	if s.kind != KindLogical || !s.valid {
		return false, false
	}
	return s.num != 0, true
}

// Time returns the date at UTC midnight. ok is false when s is missing or not a date.
func (s Scalar) Time() (time.Time, bool) {
	if s.kind != KindDate || !s.valid {
		return time.Time{}, false
	}
	return s.dateTime(), true
}

// Days returns days since 1970-01-01. ok is false when s is missing or not a date.
func (s Scalar) Days() (int32, bool) {
	if s.kind != KindDate || !s.valid {
		return 0, false
	}
	return int32(s.num), true
}

// Code returns the 1-based factor code. ok is false when s is missing or not a factor.
func (s Scalar) Code() (int32, bool) {
	if s.kind != KindFactor || !s.valid {
		return 0, false
	}
	return int32(s.num), true
}

// Label returns the factor label, or "NA" when missing
func (s Scalar) Label() string {
	if s.kind != KindFactor || !s.valid {
		return NALabel
	}
	return s.str
}

// Levels returns the factor's level set, nil for other kinds
func (s Scalar) Levels() *Levels {
	return s.levels
}

// NumberBits returns the float64 bit pattern, NANumberBits when missing.
// It is only meaningful for numbers.
func (s Scalar) NumberBits() uint64 {
	if !s.valid {
		return NANumberBits
	}
	return math.Float64bits(s.f)
}

// Primitive returns the int32 wire value of an integer, logical, date or
// factor, with math.MinInt32 for missing.
func (s Scalar) Primitive() int32 {
	if !s.valid {
		return NAInteger
	}
	return int32(s.num)
}

func (s Scalar) dateTime() time.Time {
	return time.Unix(s.num*secondsPerDay, 0).UTC()
}

// As converts s to kind k. Converting a kind to itself is the identity,
// untyped NA becomes the missing value of any kind, and the widening rules
// integer to number, logical to integer, factor to text and factor to
// integer code are supported. Everything else is an IncompatibleType error.
func (s Scalar) As(k Kind) (Scalar, error) {
	if s.kind == k {
		return s, nil
	}
	if s.kind == KindUntyped {
		return Missing(k), nil
	}
	switch {
	case s.kind == KindInteger && k == KindNumber:
		if !s.valid {
			return Missing(KindNumber), nil
		}
		return Number(float64(s.num)), nil
	case s.kind == KindLogical && k == KindInteger:
		if !s.valid {
			return Missing(KindInteger), nil
		}
		return Integer(int32(s.num)), nil
	case s.kind == KindFactor && k == KindText:
		if !s.valid {
			return Missing(KindText), nil
		}
		return Text(s.str), nil
	case s.kind == KindFactor && k == KindInteger:
		if !s.valid {
			return Missing(KindInteger), nil
		}
		return Integer(int32(s.num)), nil
	}
	return Scalar{}, errors.NewTypeMismatchError("As", "", k.String(), s.kind.String())
}

// Key is a comparable form of a Scalar, usable as a map key
type Key struct {
	kind  Kind
	valid bool
	num   int64
	bits  uint64
	str   string
}

var canonicalNaN = math.Float64bits(math.NaN())

// Key returns the comparable key of s. All NaN payloads share one key.
func (s Scalar) Key() Key {
	if !s.valid {
		return Key{kind: s.kind}
	}
	k := Key{kind: s.kind, valid: true, num: s.num, str: s.str}
	if s.kind == KindNumber {
		if math.IsNaN(s.f) {
			k.bits = canonicalNaN
		} else {
			k.bits = math.Float64bits(s.f)
		}
	}
	return k
}

// Equal reports whether s and o have the same kind and value. Missing values
// of the same kind are equal, and NaN equals NaN.
func (s Scalar) Equal(o Scalar) bool {
	return s.Key() == o.Key()
}

// HashInto feeds the key of s into d
func (s Scalar) HashInto(d *xxhash.Digest) {
	k := s.Key()
	var buf [18]byte
	buf[0] = byte(k.kind)
	if k.valid {
		buf[1] = 1
	}
	binary.LittleEndian.PutUint64(buf[2:10], uint64(k.num))
	binary.LittleEndian.PutUint64(buf[10:18], k.bits)
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(k.str)
	_, _ = d.Write([]byte{0})
}

// Hash returns the xxhash of s. Equal scalars hash equally.
func (s Scalar) Hash() uint64 {
	return HashTuple(s)
}

// HashTuple hashes a sequence of scalars in order
func HashTuple(values ...Scalar) uint64 {
	d := xxhash.New()
	for _, v := range values {
		v.HashInto(d)
	}
	return d.Sum64()
}

// String renders s for display. Missing values of every kind print as "NA".
func (s Scalar) String() string {
	if !s.valid {
		return NALabel
	}
	switch s.kind {
	case KindInteger:
		return strconv.FormatInt(s.num, 10)
	case KindNumber:
		return formatNumber(s.f)
	case KindText, KindFactor:
		return s.str
	case KindLogical:
		return strconv.FormatBool(s.num != 0)
	case KindDate:
		return s.dateTime().Format(DateLayout)
	}
	return NALabel
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
