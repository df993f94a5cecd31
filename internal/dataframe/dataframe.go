// Package dataframe provides the DataFrame: an ordered set of equal-length
// named series with an optional set of grouping columns.
//
// Structural mutation (AddRow, AddCol, BindRows, BindCols, Mutate, Rename)
// is serialized by a per-frame mutex and either applies completely or leaves
// the frame unchanged. Operations that produce a new frame (Select, Drop,
// Filter, Subset, GroupModify) never modify the receiver.
package dataframe

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/paveg/rframe/internal/convert"
	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/logging"
	"github.com/paveg/rframe/internal/monitoring"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"github.com/paveg/rframe/internal/validation"
	"go.uber.org/zap"
)

// DataFrame represents a 2-dimensional table of typed, missing-aware columns
type DataFrame struct {
	mu      sync.RWMutex
	columns map[string]*series.Series
	order   []string
	groups  []string
	rows    int
}

// New creates an empty DataFrame
func New() *DataFrame {
	return &DataFrame{columns: make(map[string]*series.Series)}
}

// FromColumns creates a DataFrame from series given in name, series pairs order
func FromColumns(names []string, cols []*series.Series) (*DataFrame, error) {
	if len(names) != len(cols) {
		return nil, errors.NewLengthMismatchError("FromColumns", "", len(names), len(cols))
	}
	df := New()
	for i, name := range names {
		if err := df.AddCol(name, cols[i]); err != nil {
			return nil, err
		}
	}
	return df, nil
}

func log() *zap.Logger {
	return logging.Named("dataframe")
}

// unlocked exposes column metadata to validators while the caller holds the lock
type unlocked struct{ df *DataFrame }

func (u unlocked) HasColumn(name string) bool {
	_, ok := u.df.columns[name]
	return ok
}

func (u unlocked) Names() []string { return slices.Clone(u.df.order) }
func (u unlocked) NRow() int       { return u.df.rows }
func (u unlocked) NCol() int       { return len(u.df.order) }

// populated reports whether the frame has a fixed row count
func (df *DataFrame) populated() bool {
	return len(df.order) > 0 || df.rows > 0
}

// Names returns the column names in order
func (df *DataFrame) Names() []string {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return slices.Clone(df.order)
}

// NRow returns the number of rows
func (df *DataFrame) NRow() int {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.rows
}

// NCol returns the number of columns
func (df *DataFrame) NCol() int {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return len(df.order)
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	df.mu.RLock()
	defer df.mu.RUnlock()
	_, ok := df.columns[name]
	return ok
}

// KindOf returns the kind of the named column
func (df *DataFrame) KindOf(name string) (scalar.Kind, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	col, ok := df.columns[name]
	if !ok {
		return scalar.KindUntyped, errors.NewColumnNotFoundError("KindOf", name)
	}
	return col.Kind(), nil
}

// AddRow appends one row. Existing columns receive the value converted to
// their kind, new columns are created and back-filled with missing values,
// and columns absent from row receive a missing value. If any value cannot
// be converted the frame is left unchanged.
func (df *DataFrame) AddRow(row scalar.Record) error {
	df.mu.Lock()
	defer df.mu.Unlock()

	seen := make(map[string]struct{}, len(row))
	values := make([]scalar.Scalar, len(row))
	for i, entry := range row {
		if _, dup := seen[entry.Name]; dup {
			return errors.NewDuplicateColumnError("AddRow", entry.Name)
		}
		seen[entry.Name] = struct{}{}

		col, ok := df.columns[entry.Name]
		if !ok {
			values[i] = entry.Value
			continue
		}
		c, err := col.Coerce(entry.Value)
		if err != nil {
			return errors.Wrap("AddRow", entry.Name, err)
		}
		values[i] = c
	}

	for i, entry := range row {
		if col, ok := df.columns[entry.Name]; ok {
			if err := col.Append(values[i]); err != nil {
				return errors.NewInternalError("AddRow", err)
			}
			continue
		}
		df.columns[entry.Name] = series.Padded(values[i], df.rows+1)
		df.order = append(df.order, entry.Name)
	}
	for _, name := range df.order {
		if _, ok := seen[name]; !ok {
			df.columns[name].Pad(1)
		}
	}
	df.rows++
	return nil
}

// AddValues appends one row of Go values, converted in sorted key order.
// Values with no scalar mapping become text when string fallback is
// enabled, and are reported as UnconvertableType otherwise.
func (df *DataFrame) AddValues(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fallback := config.GetGlobalConfig().StringFallback
	row := make(scalar.Record, 0, len(keys))
	for _, k := range keys {
		v, err := convert.FromHost(values[k])
		if err != nil {
			if !fallback {
				return errors.Wrap("AddValues", k, err)
			}
			log().Debug("value stored as text", zap.String("column", k), zap.Error(err))
			v = scalar.Text(fmt.Sprint(values[k]))
		}
		row = append(row, scalar.Named{Name: k, Value: v})
	}
	return df.AddRow(row)
}

// AddCol adds a named column. The name must be new and, unless the frame
// is empty, the column length must equal the row count.
func (df *DataFrame) AddCol(name string, col *series.Series) error {
	df.mu.Lock()
	defer df.mu.Unlock()

	validators := []validation.Validator{validation.NewUniqueNameValidator(unlocked{df}, "AddCol", name)}
	if df.populated() {
		validators = append(validators, validation.NewLengthValidator(df.rows, col.Len(), "AddCol", name))
	}
	if err := validation.ValidateAll(validators...); err != nil {
		return err
	}

	df.columns[name] = col.Clone()
	df.order = append(df.order, name)
	df.rows = col.Len()
	return nil
}

// snapshot returns an independent copy taken under the read lock
func (df *DataFrame) snapshot() *DataFrame {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.cloneLocked()
}

func (df *DataFrame) cloneLocked() *DataFrame {
	out := &DataFrame{
		columns: make(map[string]*series.Series, len(df.columns)),
		order:   slices.Clone(df.order),
		groups:  slices.Clone(df.groups),
		rows:    df.rows,
	}
	for name, col := range df.columns {
		out.columns[name] = col.Clone()
	}
	return out
}

// BindRows appends the rows of other. The result has the union of both
// column sets; columns missing on either side are filled with missing
// values. Shared columns must have compatible kinds.
func (df *DataFrame) BindRows(other *DataFrame) error {
	o := other.snapshot()

	df.mu.Lock()
	defer df.mu.Unlock()

	for _, name := range df.order {
		if oc, ok := o.columns[name]; ok {
			if err := validation.ValidateKind(df.columns[name].Kind(), oc.Kind(), "BindRows", name); err != nil {
				return err
			}
		}
	}

	merged := make(map[string]*series.Series, len(df.columns)+len(o.columns))
	order := slices.Clone(df.order)
	for _, name := range df.order {
		col := df.columns[name].Clone()
		if oc, ok := o.columns[name]; ok {
			if err := col.AppendAll(oc); err != nil {
				return errors.Wrap("BindRows", name, err)
			}
		} else {
			col.Pad(o.rows)
		}
		merged[name] = col
	}
	for _, name := range o.order {
		if _, ok := df.columns[name]; ok {
			continue
		}
		col := series.Missing(scalar.KindUntyped, df.rows)
		if err := col.AppendAll(o.columns[name]); err != nil {
			return errors.Wrap("BindRows", name, err)
		}
		merged[name] = col
		order = append(order, name)
	}

	df.columns = merged
	df.order = order
	df.rows += o.rows
	return nil
}

// BindRows concatenates frames into a new DataFrame
func BindRows(frames ...*DataFrame) (*DataFrame, error) {
	out := New()
	err := monitoring.RecordGlobal(monitoring.OpBindRows, false, func() (int, error) {
		for _, f := range frames {
			if f == nil {
				continue
			}
			if err := out.BindRows(f); err != nil {
				return 0, err
			}
		}
		return out.NRow(), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BindCols adds the columns of other. Both frames must have the same row
// count and no column name in common.
func (df *DataFrame) BindCols(other *DataFrame) error {
	o := other.snapshot()

	df.mu.Lock()
	defer df.mu.Unlock()

	validators := []validation.Validator{validation.NewUniqueNameValidator(unlocked{df}, "BindCols", o.order...)}
	if df.populated() {
		validators = append(validators, validation.NewLengthValidator(df.rows, o.rows, "BindCols", ""))
	}
	if err := validation.ValidateAll(validators...); err != nil {
		return err
	}

	for _, name := range o.order {
		df.columns[name] = o.columns[name]
		df.order = append(df.order, name)
	}
	df.rows = o.rows
	return nil
}

// Select returns a new DataFrame with the named columns in the order given.
// Grouping columns are always kept and come first when not requested.
// Unknown names are skipped.
func (df *DataFrame) Select(names ...string) *DataFrame {
	df.mu.RLock()
	defer df.mu.RUnlock()

	out := &DataFrame{
		columns: make(map[string]*series.Series, len(names)+len(df.groups)),
		groups:  slices.Clone(df.groups),
		rows:    df.rows,
	}
	add := func(name string) {
		if _, dup := out.columns[name]; dup {
			return
		}
		col, ok := df.columns[name]
		if !ok {
			log().Debug("select skipped unknown column", zap.String("column", name))
			return
		}
		out.columns[name] = col.Clone()
		out.order = append(out.order, name)
	}

	for _, g := range df.groups {
		if !slices.Contains(names, g) {
			log().Info("select keeps grouping column", zap.String("column", g))
			add(g)
		}
	}
	for _, name := range names {
		add(name)
	}
	return out
}

// Drop returns a new DataFrame without the named columns. Dropped grouping
// columns leave the grouping set. The row count is kept even when every
// column is dropped.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	df.mu.RLock()
	defer df.mu.RUnlock()

	out := &DataFrame{
		columns: make(map[string]*series.Series, len(df.columns)),
		rows:    df.rows,
	}
	for _, name := range df.order {
		if slices.Contains(names, name) {
			continue
		}
		out.columns[name] = df.columns[name].Clone()
		out.order = append(out.order, name)
	}
	for _, g := range df.groups {
		if !slices.Contains(names, g) {
			out.groups = append(out.groups, g)
		}
	}
	return out
}

// Predicate matches the values of one column
type Predicate struct {
	Column string
	Match  func(scalar.Scalar) bool
}

// Where builds a Predicate
func Where(column string, match func(scalar.Scalar) bool) Predicate {
	return Predicate{Column: column, Match: match}
}

// Filter returns the rows accepted by every predicate. With no predicates
// every row is kept.
func (df *DataFrame) Filter(predicates ...Predicate) (*DataFrame, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()

	masks := make([][]bool, 0, len(predicates))
	for _, p := range predicates {
		col, ok := df.columns[p.Column]
		if !ok {
			return nil, errors.NewColumnNotFoundError("Filter", p.Column)
		}
		masks = append(masks, col.MatchesFunc(p.Match))
	}
	return df.subsetLocked(masks)
}

// FilterEq returns the rows whose values equal every entry of match. Values
// are converted to the column kind before comparison.
func (df *DataFrame) FilterEq(match scalar.Record) (*DataFrame, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()

	masks := make([][]bool, 0, len(match))
	for _, m := range match {
		col, ok := df.columns[m.Name]
		if !ok {
			return nil, errors.NewColumnNotFoundError("FilterEq", m.Name)
		}
		masks = append(masks, col.Matches(m.Value))
	}
	return df.subsetLocked(masks)
}

func (df *DataFrame) subsetLocked(masks [][]bool) (*DataFrame, error) {
	mask := make([]bool, df.rows)
	kept := 0
	for i := range mask {
		mask[i] = true
		for _, m := range masks {
			if !m[i] {
				mask[i] = false
				break
			}
		}
		if mask[i] {
			kept++
		}
	}

	out := &DataFrame{
		columns: make(map[string]*series.Series, len(df.columns)),
		order:   slices.Clone(df.order),
		groups:  slices.Clone(df.groups),
		rows:    kept,
	}
	for _, name := range df.order {
		col, err := df.columns[name].Subset(mask)
		if err != nil {
			return nil, errors.Wrap("Filter", name, err)
		}
		out.columns[name] = col
	}
	return out, nil
}

// Pull returns a copy of the named column
func (df *DataFrame) Pull(name string) (*series.Series, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	col, ok := df.columns[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError("Pull", name)
	}
	return col.Clone(), nil
}

// PullAs returns a copy of the named column viewed as kind. A column of
// another kind is an IncompatibleType error; see Series.Cast for conversion.
func (df *DataFrame) PullAs(name string, kind scalar.Kind) (*series.Series, error) {
	col, err := df.Pull(name)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateKind(kind, col.Kind(), "Pull", name); err != nil {
		return nil, err
	}
	return col.As(kind)
}

// Mutate replaces the named column by mapping every value through fn
func (df *DataFrame) Mutate(name string, fn func(scalar.Scalar) scalar.Scalar) error {
	df.mu.Lock()
	defer df.mu.Unlock()

	if err := validation.ValidateColumns(unlocked{df}, "Mutate", name); err != nil {
		return err
	}
	mapped, err := df.columns[name].Map(fn)
	if err != nil {
		return errors.Wrap("Mutate", name, err)
	}
	df.columns[name] = mapped
	return nil
}

// Derive computes a column from every row and adds it, replacing an
// existing column of the same name in place
func (df *DataFrame) Derive(name string, fn func(*Row) scalar.Scalar) error {
	snap := df.snapshot()
	col := series.New(scalar.KindUntyped)
	for i := 0; i < snap.rows; i++ {
		v := fn(snap.rowLocked(i))
		if v.IsMissing() && col.Resolved() {
			v = scalar.Missing(col.Kind())
		}
		if err := col.Append(v); err != nil {
			return errors.Wrap("Derive", name, fmt.Errorf("row %d: %w", i, err))
		}
	}

	df.mu.Lock()
	defer df.mu.Unlock()
	if err := validation.ValidateLength(df.rows, col.Len(), "Derive", name); err != nil {
		return err
	}
	if _, ok := df.columns[name]; !ok {
		df.order = append(df.order, name)
	}
	df.columns[name] = col
	return nil
}

// Rename moves the column from to the name to, keeping its position
func (df *DataFrame) Rename(to, from string) error {
	if to == from {
		return nil
	}

	df.mu.Lock()
	defer df.mu.Unlock()

	if err := validation.ValidateAll(
		validation.NewColumnValidator(unlocked{df}, "Rename", from),
		validation.NewUniqueNameValidator(unlocked{df}, "Rename", to),
	); err != nil {
		return err
	}

	df.columns[to] = df.columns[from]
	delete(df.columns, from)
	df.order[slices.Index(df.order, from)] = to
	if i := slices.Index(df.groups, from); i >= 0 {
		df.groups[i] = to
	}
	return nil
}

// Distinct returns the unique rows in first-seen order
func (df *DataFrame) Distinct() []scalar.Record {
	df.mu.RLock()
	defer df.mu.RUnlock()

	buckets := make(map[uint64][]int)
	var out []scalar.Record
	for i := 0; i < df.rows; i++ {
		rec := df.recordLocked(i, df.order)
		h := rec.Hash()
		dup := false
		for _, j := range buckets[h] {
			if out[j].Equal(rec) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[h] = append(buckets[h], len(out))
		out = append(out, rec)
	}
	return out
}

// Subset returns the rows in [start, end) as a new DataFrame
func (df *DataFrame) Subset(start, end int) (*DataFrame, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()

	if err := validation.ValidateBounds(start, end, df.rows, "Subset"); err != nil {
		return nil, err
	}
	out := &DataFrame{
		columns: make(map[string]*series.Series, len(df.columns)),
		order:   slices.Clone(df.order),
		groups:  slices.Clone(df.groups),
		rows:    end - start,
	}
	for _, name := range df.order {
		col, err := df.columns[name].Slice(start, end)
		if err != nil {
			return nil, errors.Wrap("Subset", name, err)
		}
		out.columns[name] = col
	}
	return out, nil
}

func (df *DataFrame) recordLocked(i int, names []string) scalar.Record {
	rec := make(scalar.Record, len(names))
	for j, name := range names {
		rec[j] = scalar.Named{Name: name, Value: df.columns[name].At(i)}
	}
	return rec
}

// All iterates over the columns in order. It yields copies taken when
// iteration starts.
func (df *DataFrame) All() iter.Seq2[string, *series.Series] {
	snap := df.snapshot()
	return func(yield func(string, *series.Series) bool) {
		for _, name := range snap.order {
			if !yield(name, snap.columns[name]) {
				return
			}
		}
	}
}

// Records returns every row as a record
func (df *DataFrame) Records() []scalar.Record {
	df.mu.RLock()
	defer df.mu.RUnlock()
	out := make([]scalar.Record, df.rows)
	for i := range out {
		out[i] = df.recordLocked(i, df.order)
	}
	return out
}

// HostRows iterates over the rows as maps of Go values, nil for missing
func (df *DataFrame) HostRows() iter.Seq[map[string]any] {
	snap := df.snapshot()
	return func(yield func(map[string]any) bool) {
		for i := 0; i < snap.rows; i++ {
			row := make(map[string]any, len(snap.order))
			for _, name := range snap.order {
				row[name] = convert.ToHost(snap.columns[name].At(i))
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Clone returns an independent copy
func (df *DataFrame) Clone() *DataFrame {
	return df.snapshot()
}

// Equal reports whether both frames have the same columns in the same
// order, equal values and the same grouping columns
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df == other {
		return true
	}
	if other == nil {
		return false
	}
	a, b := df.snapshot(), other.snapshot()
	if a.rows != b.rows || !slices.Equal(a.order, b.order) || !slices.Equal(a.groups, b.groups) {
		return false
	}
	for _, name := range a.order {
		if !a.columns[name].Equal(b.columns[name]) {
			return false
		}
	}
	return true
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	df.mu.RLock()
	defer df.mu.RUnlock()

	if len(df.order) == 0 {
		return fmt.Sprintf("DataFrame[%dx0]", df.rows)
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.rows, len(df.order))}
	if len(df.groups) > 0 {
		parts = append(parts, fmt.Sprintf("  groups: %s", strings.Join(df.groups, ", ")))
	}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s", name, df.columns[name]))
	}
	return strings.Join(parts, "\n")
}
