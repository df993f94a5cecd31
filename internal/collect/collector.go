package collect

import (
	"fmt"
	"sort"

	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/convert"
	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/logging"
	"github.com/paveg/rframe/internal/monitoring"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Rule extracts one named column value from an item
type Rule[T any] struct {
	Label   string
	Extract func(T) any
}

// Mapping creates a Rule. fn may return a scalar.Scalar or any Go value
// accepted by convert.FromHost.
func Mapping[T any](label string, fn func(T) any) Rule[T] {
	return Rule[T]{Label: label, Extract: fn}
}

type options struct {
	strict bool
}

// Option configures a collector
type Option func(*options)

// StrictConversion makes values with no scalar mapping fail the collection
// instead of being stored as text
func StrictConversion() Option {
	return func(o *options) { o.strict = true }
}

func newOptions(opts []Option) options {
	o := options{strict: !config.GetGlobalConfig().StringFallback}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// toScalar converts a host value, falling back to its text form unless strict
func (o options) toScalar(label string, v any) (scalar.Scalar, error) {
	s, err := convert.FromHost(v)
	if err == nil {
		return s, nil
	}
	if o.strict {
		return scalar.NA, errors.Wrap("Collect", label, err)
	}
	logging.Named("collect").Debug("value stored as text", zap.String("column", label), zap.Error(err))
	return scalar.Text(fmt.Sprint(v)), nil
}

func extract[T any](o options, rules []Rule[T], item T) (scalar.Record, error) {
	rec := make(scalar.Record, 0, len(rules))
	for _, r := range rules {
		v, err := o.toScalar(r.Label, r.Extract(item))
		if err != nil {
			return nil, err
		}
		rec = append(rec, scalar.Named{Name: r.Label, Value: v})
	}
	return rec, nil
}

// Collector turns items into DataFrame rows, one row per item
type Collector[T any] struct {
	rules []Rule[T]
	opts  options
}

// NewCollector creates a collector that applies rules to every item
func NewCollector[T any](rules []Rule[T], opts ...Option) *Collector[T] {
	return &Collector[T]{rules: rules, opts: newOptions(opts)}
}

// Supplier returns an empty accumulator
func (c *Collector[T]) Supplier() *dataframe.DataFrame {
	return dataframe.New()
}

// Accumulate adds the row for item to acc. The frame's own lock serializes
// concurrent calls on one accumulator.
func (c *Collector[T]) Accumulate(acc *dataframe.DataFrame, item T) error {
	rec, err := extract(c.opts, c.rules, item)
	if err != nil {
		return err
	}
	return acc.AddRow(rec)
}

// Combine appends the rows of b to a and returns a
func (c *Collector[T]) Combine(a, b *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return combine(a, b)
}

// Collect folds items into a DataFrame, in input order
func (c *Collector[T]) Collect(items []T) (*dataframe.DataFrame, error) {
	return fold(items, c.Supplier, c.Accumulate, c.Combine)
}

// FlatRule expands an item into sub-items, each described by rules
type FlatRule[T, W any] struct {
	Expand func(T) []W
	Rules  []Rule[W]
}

// FlatMapping creates a FlatRule
func FlatMapping[T, W any](expand func(T) []W, rules ...Rule[W]) FlatRule[T, W] {
	return FlatRule[T, W]{Expand: expand, Rules: rules}
}

// FlatCollector turns every sub-item of an item into one row that repeats
// the item's own values. Items without sub-items contribute no rows.
type FlatCollector[T, W any] struct {
	parent []Rule[T]
	flat   FlatRule[T, W]
	opts   options
}

// NewFlatCollector creates a flattening collector. A sub-item value replaces
// a parent value of the same label.
func NewFlatCollector[T, W any](parent []Rule[T], flat FlatRule[T, W], opts ...Option) *FlatCollector[T, W] {
	return &FlatCollector[T, W]{parent: parent, flat: flat, opts: newOptions(opts)}
}

// Supplier returns an empty accumulator
func (c *FlatCollector[T, W]) Supplier() *dataframe.DataFrame {
	return dataframe.New()
}

// Accumulate adds one row per sub-item of item to acc
func (c *FlatCollector[T, W]) Accumulate(acc *dataframe.DataFrame, item T) error {
	base, err := extract(c.opts, c.parent, item)
	if err != nil {
		return err
	}
	for _, sub := range c.flat.Expand(item) {
		child, err := extract(c.opts, c.flat.Rules, sub)
		if err != nil {
			return err
		}
		rec := base
		for _, n := range child {
			rec = rec.With(n.Name, n.Value)
		}
		if err := acc.AddRow(rec); err != nil {
			return err
		}
	}
	return nil
}

// Combine appends the rows of b to a and returns a
func (c *FlatCollector[T, W]) Combine(a, b *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return combine(a, b)
}

// Collect folds items into a DataFrame, in input order
func (c *FlatCollector[T, W]) Collect(items []T) (*dataframe.DataFrame, error) {
	return fold(items, c.Supplier, c.Accumulate, c.Combine)
}

// CollectMaps builds a DataFrame with one row per map. Keys are added in
// sorted order, so columns first seen in the same row appear sorted.
func CollectMaps(rows []map[string]any, opts ...Option) (*dataframe.DataFrame, error) {
	o := newOptions(opts)
	return fold(rows, dataframe.New, func(acc *dataframe.DataFrame, m map[string]any) error {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rec := make(scalar.Record, 0, len(keys))
		for _, k := range keys {
			v, err := o.toScalar(k, m[k])
			if err != nil {
				return err
			}
			rec = append(rec, scalar.Named{Name: k, Value: v})
		}
		return acc.AddRow(rec)
	}, combine)
}

// combine appends b to a. Columns of b are first converted to the kind a
// already holds for them, as AddRow would convert each value, so the result
// does not depend on where the chunks were split.
func combine(a, b *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	names := b.Names()
	cols := make([]*series.Series, 0, len(names))
	widened := false
	for name, col := range b.All() {
		kind, err := a.KindOf(name)
		if err == nil && kind != scalar.KindUntyped && col.Resolved() && col.Kind() != kind {
			if col, err = col.Cast(kind); err != nil {
				return nil, errors.Wrap("Combine", name, err)
			}
			widened = true
		}
		cols = append(cols, col)
	}
	if widened {
		var err error
		if b, err = dataframe.FromColumns(names, cols); err != nil {
			return nil, err
		}
	}
	if err := a.BindRows(b); err != nil {
		return nil, err
	}
	return a, nil
}

// fold accumulates chunks of items in parallel and combines the partial
// frames in chunk order
func fold[T any](
	items []T,
	supplier func() *dataframe.DataFrame,
	accumulate func(*dataframe.DataFrame, T) error,
	combine func(a, b *dataframe.DataFrame) (*dataframe.DataFrame, error),
) (*dataframe.DataFrame, error) {
	cfg := config.GetGlobalConfig()
	chunks := partition(items, cfg.CollectChunkSize)

	var out *dataframe.DataFrame
	err := monitoring.RecordGlobal(monitoring.OpCollect, len(chunks) > 1, func() (int, error) {
		partials := make([]*dataframe.DataFrame, len(chunks))

		var g errgroup.Group
		g.SetLimit(cfg.Workers())
		for i, chunk := range chunks {
			g.Go(func() error {
				acc := supplier()
				for _, item := range chunk {
					if err := accumulate(acc, item); err != nil {
						return err
					}
				}
				partials[i] = acc
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return 0, err
		}

		out = supplier()
		for _, p := range partials {
			var err error
			if out, err = combine(out, p); err != nil {
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
