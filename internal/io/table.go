package io

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/paveg/rframe/internal/dataframe"
)

// Write renders df as a table followed by a row count line
func (w *TableWriter) Write(df *dataframe.DataFrame) error {
	names := df.Names()
	total := df.NRow()
	if len(names) == 0 {
		_, err := fmt.Fprintf(w.writer, "(%d rows, no columns)\n", total)
		return err
	}

	t := w.newTable()
	header := make(table.Row, len(names))
	for i, name := range names {
		header[i] = name
	}
	t.AppendHeader(header)
	if w.options.ShowKinds {
		kinds := make(table.Row, len(names))
		for i, name := range names {
			kind, err := df.KindOf(name)
			if err != nil {
				return err
			}
			kinds[i] = "<" + kind.String() + ">"
		}
		t.AppendHeader(kinds)
	}

	shown := total
	if w.options.MaxRows > 0 && shown > w.options.MaxRows {
		shown = w.options.MaxRows
	}
	view, err := df.Subset(0, shown)
	if err != nil {
		return err
	}
	for _, rec := range view.Records() {
		row := make(table.Row, len(rec))
		for i, n := range rec {
			row[i] = n.Value.String()
		}
		t.AppendRow(row)
	}
	t.Render()

	if groups := df.Groups(); len(groups) > 0 {
		if _, err := fmt.Fprintf(w.writer, "groups: %s\n", strings.Join(groups, ", ")); err != nil {
			return err
		}
	}
	if shown < total {
		_, err = fmt.Fprintf(w.writer, "(%d of %d rows)\n", shown, total)
	} else {
		_, err = fmt.Fprintf(w.writer, "(%d rows)\n", total)
	}
	return err
}

// WriteSummary renders one line per column with its kind, length, missing
// count and number of distinct values
func (w *TableWriter) WriteSummary(df *dataframe.DataFrame) error {
	t := w.newTable()
	t.AppendHeader(table.Row{"column", "kind", "n", "missing", "distinct"})
	for name, col := range df.All() {
		missing := 0
		for _, v := range col.Values() {
			if v.IsMissing() {
				missing++
			}
		}
		t.AppendRow(table.Row{name, col.Kind().String(), col.Len(), missing, col.Distinct().Len()})
	}
	t.Render()
	return nil
}

func (w *TableWriter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w.writer)
	t.SetStyle(table.StyleLight)
	if w.options.Title != "" {
		t.SetTitle(w.options.Title)
	}
	return t
}
