package scalar

import "slices"

// Levels is an immutable, ordered set of factor labels. Codes are 1-based.
// A Levels value is shared by every factor scalar of one column.
type Levels struct {
	labels []string
	index  map[string]int32
}

// NewLevels creates a level set. Repeated labels keep their first position.
func NewLevels(labels ...string) *Levels {
	l := &Levels{index: make(map[string]int32, len(labels))}
	for _, label := range labels {
		if _, ok := l.index[label]; ok {
			continue
		}
		l.labels = append(l.labels, label)
		l.index[label] = int32(len(l.labels))
	}
	return l
}

// Len returns the number of levels
func (l *Levels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.labels)
}

// Labels returns a copy of the labels in code order
func (l *Levels) Labels() []string {
	if l == nil {
		return nil
	}
	return slices.Clone(l.labels)
}

// Label returns the label for a 1-based code
func (l *Levels) Label(code int32) (string, bool) {
	if l == nil || code < 1 || int(code) > len(l.labels) {
		return "", false
	}
	return l.labels[code-1], true
}

// Code returns the 1-based code of label
func (l *Levels) Code(label string) (int32, bool) {
	if l == nil {
		return 0, false
	}
	code, ok := l.index[label]
	return code, ok
}

// Value returns the factor scalar for label, missing when the label is unknown
func (l *Levels) Value(label string) Scalar {
	code, ok := l.Code(label)
	if !ok {
		return Scalar{kind: KindFactor, levels: l}
	}
	return Factor(code, l)
}

// Equal reports whether both level sets hold the same labels in the same order
func (l *Levels) Equal(o *Levels) bool {
	if l == o {
		return true
	}
	return slices.Equal(l.Labels(), o.Labels())
}
