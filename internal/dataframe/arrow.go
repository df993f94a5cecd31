package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/series"
)

// groupsMetadataKey stores the grouping columns in the schema metadata
const groupsMetadataKey = "rframe.groups"

// ToArrow exports the frame as an Arrow record. The caller owns the record
// and must Release it.
func (df *DataFrame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	snap := df.snapshot()

	fields := make([]arrow.Field, len(snap.order))
	cols := make([]arrow.Array, len(snap.order))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, name := range snap.order {
		col := snap.columns[name]
		fields[i] = arrow.Field{Name: name, Type: col.Kind().ArrowType(), Nullable: true}
		cols[i] = col.Arrow(mem)
	}

	var meta *arrow.Metadata
	if len(snap.groups) > 0 {
		encoded, err := json.Marshal(snap.groups)
		if err != nil {
			return nil, errors.NewInternalError("ToArrow", err)
		}
		m := arrow.NewMetadata([]string{groupsMetadataKey}, []string{string(encoded)})
		meta = &m
	}

	schema := arrow.NewSchema(fields, meta)
	return array.NewRecord(schema, cols, int64(snap.rows)), nil
}

// FromArrow builds a DataFrame from an Arrow record, restoring grouping
// columns stored by ToArrow
func FromArrow(rec arrow.Record) (*DataFrame, error) {
	df := New()
	for i, arr := range rec.Columns() {
		name := rec.ColumnName(i)
		col, err := series.FromArrow(arr)
		if err != nil {
			return nil, errors.Wrap("FromArrow", name, err)
		}
		if err := df.AddCol(name, col); err != nil {
			return nil, err
		}
	}
	df.rows = int(rec.NumRows())

	meta := rec.Schema().Metadata()
	if idx := meta.FindKey(groupsMetadataKey); idx >= 0 {
		var groups []string
		if err := json.Unmarshal([]byte(meta.Values()[idx]), &groups); err != nil {
			return nil, errors.Wrap("FromArrow", "", err)
		}
		df.GroupBy(groups...)
	}
	return df, nil
}
