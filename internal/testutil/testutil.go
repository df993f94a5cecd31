// Package testutil provides common testing utilities shared by the package
// tests of the rframe library.
//
// It covers:
// - Checked memory allocators for Arrow conversions
// - Standard test DataFrame creation
// - Scoped global configuration
// - Common test assertions
package testutil

import (
	"sort"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides a checked allocator that must be empty on release.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that every allocation has been freed.
func (tmc *TestMemoryContext) Release() {
	tmc.Allocator.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
		tb:        tb,
	}
}

// WithConfig replaces the global configuration for the rest of the test.
func WithConfig(tb testing.TB, mutate func(*config.Config)) {
	tb.Helper()
	original := config.GetGlobalConfig()
	cfg := config.NewConfig()
	mutate(&cfg)
	config.SetGlobalConfig(cfg)
	tb.Cleanup(func() { config.SetGlobalConfig(original) })
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
	withActive   bool
}

// WithNulls makes the second age and the third department missing.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' logical column.
func WithActiveColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withActive = true
	}
}

// CreateTestDataFrame creates a standard test DataFrame with employee data.
//
// Default DataFrame includes:
// - name (character): ["Alice", "Bob", "Charlie", "David"]
// - age (integer): [25, 30, 35, 28]
// - department (character): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (numeric): [100000, 80000, 120000, 75000]
func CreateTestDataFrame(tb testing.TB, opts ...TestDataFrameOption) *dataframe.DataFrame {
	tb.Helper()
	cfg := &testDataFrameConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	ages := series.FromInts(generateAges(cfg.rowCount))
	departments := series.FromStrings(generateDepartments(cfg.rowCount))
	if cfg.includeNulls {
		ages = withMissing(tb, ages, 1)
		departments = withMissing(tb, departments, 2)
	}

	names := []string{"name", "age", "department", "salary"}
	cols := []*series.Series{
		series.FromStrings(generateNames(cfg.rowCount)),
		ages,
		departments,
		series.FromFloats(generateSalaries(cfg.rowCount)),
	}
	if cfg.withActive {
		names = append(names, "active")
		cols = append(cols, series.FromBools(generateActiveFlags(cfg.rowCount)))
	}

	df, err := dataframe.FromColumns(names, cols)
	require.NoError(tb, err)
	return df
}

// CreateSimpleTestDataFrame creates a simple 2-column DataFrame for basic testing.
func CreateSimpleTestDataFrame(tb testing.TB) *dataframe.DataFrame {
	tb.Helper()
	df, err := dataframe.FromColumns(
		[]string{"name", "age"},
		[]*series.Series{series.FromStrings([]string{"Alice", "Bob"}), series.FromInts([]int32{25, 30})},
	)
	require.NoError(tb, err)
	return df
}

func withMissing(tb testing.TB, s *series.Series, at int) *series.Series {
	if at >= s.Len() {
		return s
	}
	values := s.Values()
	values[at] = scalar.Missing(s.Kind())
	res, err := series.Of(values...)
	require.NoError(tb, err)
	return res
}

// SortedRows renders every row and sorts the result, for order-insensitive comparison.
func SortedRows(df *dataframe.DataFrame) []string {
	var out []string
	for _, rec := range df.Records() {
		out = append(out, rec.String())
	}
	sort.Strings(out)
	return out
}

// AssertDataFrameEqual checks columns, order, grouping and values.
func AssertDataFrameEqual(tb testing.TB, expected, actual *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, expected, "expected DataFrame should not be nil")
	require.NotNil(tb, actual, "actual DataFrame should not be nil")

	assert.Equal(tb, expected.Names(), actual.Names(), "DataFrame columns should match")
	assert.Equal(tb, expected.NRow(), actual.NRow(), "DataFrame lengths should match")
	assert.True(tb, expected.Equal(actual), "expected\n%s\ngot\n%s", expected, actual)
}

// AssertSameRows checks that both frames hold the same rows in any order.
func AssertSameRows(tb testing.TB, expected, actual *dataframe.DataFrame) {
	tb.Helper()
	assert.Equal(tb, expected.Names(), actual.Names(), "DataFrame columns should match")
	assert.Equal(tb, SortedRows(expected), SortedRows(actual))
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(tb testing.TB, df *dataframe.DataFrame, expectedColumns []string) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Equal(tb, len(expectedColumns), df.NCol(), "column count should match")
	for _, col := range expectedColumns {
		assert.True(tb, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(tb testing.TB, df *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Positive(tb, df.NRow(), "DataFrame should not be empty")
	assert.Positive(tb, df.NCol(), "DataFrame should have columns")
}

func generateNames(count int) []string {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]string, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []int32 {
	baseAges := []int32{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]int32, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []string {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]string, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int) []float64 {
	baseSalaries := []float64{100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000}
	salaries := make([]float64, count)
	for i := range count {
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	return salaries
}

func generateActiveFlags(count int) []bool {
	baseFlags := []bool{true, true, false, true, true, false, true, false}
	flags := make([]bool, count)
	for i := range count {
		flags[i] = baseFlags[i%len(baseFlags)]
	}
	return flags
}
