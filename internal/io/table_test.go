package io_test

import (
	"bytes"
	"testing"

	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableWriter(t *testing.T) {
	t.Run("renders header kinds and values", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewTableWriter(&buf, io.DefaultTableOptions()).Write(sample(t)))

		out := buf.String()
		assert.Contains(t, out, "ID")
		assert.Contains(t, out, "<INTEGER>")
		assert.Contains(t, out, "y, z")
		assert.Contains(t, out, "(3 rows)")
	})

	t.Run("truncates to MaxRows", func(t *testing.T) {
		var buf bytes.Buffer
		opts := io.TableOptions{MaxRows: 2}
		require.NoError(t, io.NewTableWriter(&buf, opts).Write(sample(t)))

		out := buf.String()
		assert.Contains(t, out, "(2 of 3 rows)")
		assert.NotContains(t, out, "-2.5")
	})

	t.Run("shows grouping", func(t *testing.T) {
		var buf bytes.Buffer
		df := sample(t).GroupBy("ok")
		require.NoError(t, io.NewTableWriter(&buf, io.TableOptions{}).Write(df))
		assert.Contains(t, buf.String(), "groups: ok")
	})

	t.Run("frame without columns", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewTableWriter(&buf, io.DefaultTableOptions()).Write(dataframe.New()))
		assert.Equal(t, "(0 rows, no columns)\n", buf.String())
	})

	t.Run("summary", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewTableWriter(&buf, io.TableOptions{Title: "summary"}).WriteSummary(sample(t)))

		out := buf.String()
		assert.Contains(t, out, "DISTINCT")
		assert.Contains(t, out, "numeric")
		assert.Contains(t, out, "character")
	})
}
