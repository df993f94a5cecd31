package dataframe

import (
	"slices"

	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/monitoring"
	"github.com/paveg/rframe/internal/parallel"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"go.uber.org/zap"
)

// Group is one partition of a grouped DataFrame
type Group struct {
	// Key holds the grouping column values shared by every row of Data
	Key scalar.Record
	// Data holds the rows of the partition, grouping columns included
	Data *DataFrame
}

// GroupFunc transforms the rows of one group. The frame passed in does not
// contain the grouping columns; they are added back to the result.
type GroupFunc func(data *DataFrame, key scalar.Record) (*DataFrame, error)

// GroupBy sets the grouping columns. Unknown names are ignored.
func (df *DataFrame) GroupBy(names ...string) *DataFrame {
	df.mu.Lock()
	defer df.mu.Unlock()
	df.groups = df.knownLocked(nil, names)
	return df
}

// GroupByAdditional adds to the grouping columns. Unknown names are ignored.
func (df *DataFrame) GroupByAdditional(names ...string) *DataFrame {
	df.mu.Lock()
	defer df.mu.Unlock()
	df.groups = df.knownLocked(df.groups, names)
	return df
}

// Ungroup clears the grouping columns
func (df *DataFrame) Ungroup() *DataFrame {
	df.mu.Lock()
	defer df.mu.Unlock()
	df.groups = nil
	return df
}

// Groups returns the grouping columns
func (df *DataFrame) Groups() []string {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return slices.Clone(df.groups)
}

// IsGrouped reports whether any grouping column is set
func (df *DataFrame) IsGrouped() bool {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return len(df.groups) > 0
}

func (df *DataFrame) knownLocked(current, names []string) []string {
	out := slices.Clone(current)
	for _, name := range names {
		if _, ok := df.columns[name]; !ok {
			log().Debug("group by ignored unknown column", zap.String("column", name))
			continue
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// GroupData partitions the rows by the values of the grouping columns.
// Groups are returned in order of first appearance. An ungrouped frame is
// a single group with an empty key.
func (df *DataFrame) GroupData() ([]Group, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()

	if len(df.groups) == 0 {
		data := df.cloneLocked()
		return []Group{{Key: scalar.Record{}, Data: data}}, nil
	}

	var (
		keys    []scalar.Record
		members [][]int
	)
	buckets := make(map[uint64][]int)
	for i := 0; i < df.rows; i++ {
		key := df.recordLocked(i, df.groups)
		h := key.Hash()
		g := -1
		for _, j := range buckets[h] {
			if keys[j].Equal(key) {
				g = j
				break
			}
		}
		if g < 0 {
			g = len(keys)
			buckets[h] = append(buckets[h], g)
			keys = append(keys, key)
			members = append(members, nil)
		}
		members[g] = append(members[g], i)
	}

	out := make([]Group, len(keys))
	for g, key := range keys {
		data := &DataFrame{
			columns: make(map[string]*series.Series, len(df.columns)),
			order:   slices.Clone(df.order),
			rows:    len(members[g]),
		}
		for _, name := range df.order {
			col, err := df.columns[name].Take(members[g])
			if err != nil {
				return nil, errors.Wrap("GroupData", name, err)
			}
			data.columns[name] = col
		}
		out[g] = Group{Key: key, Data: data}
	}
	return out, nil
}

// GroupModify applies fn to every group and binds the results into a new
// DataFrame. Each result gets the group's key columns first, filled with
// the key values, replacing result columns of the same name. The result
// keeps the grouping columns. Groups run on a worker pool once their count
// reaches the configured threshold, so fn must not share mutable state
// between calls. Row order across groups is not guaranteed.
func (df *DataFrame) GroupModify(fn GroupFunc) (*DataFrame, error) {
	groups, err := df.GroupData()
	if err != nil {
		return nil, err
	}
	keys := df.Groups()

	cfg := config.GetGlobalConfig()
	useParallel := len(keys) > 0 && len(groups) >= cfg.GroupParallelThreshold

	apply := func(_ int, g Group) (*DataFrame, error) {
		res, err := fn(g.Data.Drop(keys...), g.Key)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = New()
		}
		return withKey(res, g.Key), nil
	}

	var out *DataFrame
	err = monitoring.RecordGlobal(monitoring.OpGroupModify, useParallel, func() (int, error) {
		if len(groups) == 0 {
			// no rows: keep the typed key columns and the grouping
			out = df.Select(keys...)
			return 0, nil
		}
		var results []*DataFrame
		if useParallel {
			pool := parallel.NewWorkerPool(cfg.Workers())
			defer pool.Close()
			results, err = parallel.TryProcessIndexed(pool, groups, apply)
		} else {
			results = make([]*DataFrame, len(groups))
			for i, g := range groups {
				if results[i], err = apply(i, g); err != nil {
					break
				}
			}
		}
		if err != nil {
			return 0, err
		}

		out, err = BindRows(results...)
		if err != nil {
			return 0, err
		}
		out.groups = out.knownLocked(nil, keys)
		return out.rows, nil
	})
	if err != nil {
		log().Debug("group modify failed", zap.Strings("groups", keys), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// withKey returns res with the key columns prepended
func withKey(res *DataFrame, key scalar.Record) *DataFrame {
	if len(key) == 0 {
		return res
	}
	r := res.snapshot()
	out := &DataFrame{
		columns: make(map[string]*series.Series, len(r.columns)+len(key)),
		rows:    r.rows,
	}
	for _, k := range key {
		out.columns[k.Name] = series.Rep(k.Value, r.rows)
		out.order = append(out.order, k.Name)
	}
	for _, name := range r.order {
		if _, ok := out.columns[name]; ok {
			continue
		}
		out.columns[name] = r.columns[name]
		out.order = append(out.order, name)
	}
	return out
}
