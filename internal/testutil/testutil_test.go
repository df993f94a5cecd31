package testutil_test

import (
	"testing"

	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMemoryTest(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	require.NotNil(t, mem.Allocator)

	rec, err := testutil.CreateTestDataFrame(t).ToArrow(mem.Allocator)
	require.NoError(t, err)
	rec.Release()
}

func TestCreateTestDataFrame(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t)

		assert.Equal(t, 4, df.NRow())
		testutil.AssertDataFrameHasColumns(t, df, []string{"name", "age", "department", "salary"})

		kind, err := df.KindOf("salary")
		require.NoError(t, err)
		assert.Equal(t, scalar.KindNumber, kind)
	})

	t.Run("with active column", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithActiveColumn())

		assert.Equal(t, 5, df.NCol())
		assert.True(t, df.HasColumn("active"))
	})

	t.Run("with custom row count", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithRowCount(10))

		assert.Equal(t, 10, df.NRow())
		assert.Equal(t, 4, df.NCol())
	})

	t.Run("with nulls", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithNulls())

		age, err := df.Pull("age")
		require.NoError(t, err)
		assert.True(t, age.At(1).IsMissing())
		assert.Equal(t, scalar.KindInteger, age.Kind())

		dept, err := df.Pull("department")
		require.NoError(t, err)
		assert.True(t, dept.At(2).IsMissing())
	})
}

func TestCreateSimpleTestDataFrame(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	assert.Equal(t, 2, df.NRow())
	testutil.AssertDataFrameHasColumns(t, df, []string{"name", "age"})
	testutil.AssertDataFrameNotEmpty(t, df)
}

func TestAssertions(t *testing.T) {
	a := testutil.CreateTestDataFrame(t)
	testutil.AssertDataFrameEqual(t, a, testutil.CreateTestDataFrame(t))

	reversed, err := a.Subset(2, 4)
	require.NoError(t, err)
	head, err := a.Subset(0, 2)
	require.NoError(t, err)
	require.NoError(t, reversed.BindRows(head))

	testutil.AssertSameRows(t, a, reversed)
	assert.False(t, a.Equal(reversed))
}

func TestWithConfig(t *testing.T) {
	before := config.GetGlobalConfig().CollectChunkSize

	t.Run("scoped", func(t *testing.T) {
		testutil.WithConfig(t, func(c *config.Config) { c.CollectChunkSize = 7 })
		assert.Equal(t, 7, config.GetGlobalConfig().CollectChunkSize)
	})

	assert.Equal(t, before, config.GetGlobalConfig().CollectChunkSize)
}
