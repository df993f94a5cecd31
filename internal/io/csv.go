package io

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/logging"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"go.uber.org/zap"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	dataRows := records
	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
	}

	cols := make([]*series.Series, len(headers))
	for i, header := range headers {
		values := make([]string, len(dataRows))
		for j, row := range dataRows {
			// short rows read as missing
			if i < len(row) {
				values[j] = row[i]
			}
		}
		col, err := r.parseColumn(values)
		if err != nil {
			return nil, fmt.Errorf("parsing CSV column %s: %w", header, err)
		}
		cols[i] = col
	}

	logging.Named("io").Debug("read CSV",
		zap.Int("rows", len(dataRows)), zap.Int("columns", len(headers)))
	return dataframe.FromColumns(headers, cols)
}

func (r *CSVReader) missing(v string) bool {
	return v == "" || (r.options.NA != "" && v == r.options.NA)
}

// parseColumn converts raw text into a series of the inferred kind. A column
// with no values at all stays unresolved.
func (r *CSVReader) parseColumn(values []string) (*series.Series, error) {
	kind := scalar.KindText
	if r.options.InferKinds {
		kind = r.inferKind(values)
	}
	if len(values) == 0 {
		return series.New(scalar.KindUntyped), nil
	}

	col := series.New(kind)
	for _, v := range values {
		if err := col.Append(r.parseValue(kind, v)); err != nil {
			return nil, err
		}
	}
	return col, nil
}

func (r *CSVReader) parseValue(kind scalar.Kind, v string) scalar.Scalar {
	if r.missing(v) {
		return scalar.Missing(kind)
	}
	switch kind {
	case scalar.KindLogical:
		return scalar.Logical(strings.EqualFold(v, trueStr))
	case scalar.KindInteger:
		i, _ := strconv.ParseInt(v, 10, 32)
		return scalar.Integer(int32(i))
	case scalar.KindNumber:
		f, _ := strconv.ParseFloat(v, 64)
		return scalar.Number(f)
	case scalar.KindDate:
		return scalar.ParseDate(v)
	}
	return scalar.Text(v)
}

// inferKind picks the narrowest kind every non-missing value parses as.
// An all-missing column is logical, the narrowest kind.
func (r *CSVReader) inferKind(values []string) scalar.Kind {
	logical, integer, number, date := true, true, true, true
	for _, v := range values {
		if r.missing(v) {
			continue
		}
		if logical && !isBool(v) {
			logical = false
		}
		if integer && !isInt32(v) {
			integer = false
		}
		if number {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				number = false
			}
		}
		if date && scalar.ParseDate(v).IsMissing() {
			date = false
		}
		if !logical && !integer && !number && !date {
			return scalar.KindText
		}
	}
	switch {
	case logical:
		return scalar.KindLogical
	case integer:
		return scalar.KindInteger
	case number:
		return scalar.KindNumber
	case date:
		return scalar.KindDate
	}
	return scalar.KindText
}

func isBool(v string) bool {
	return strings.EqualFold(v, trueStr) || strings.EqualFold(v, falseStr)
}

// isInt32 excludes math.MinInt32, which is the missing integer
func isInt32(v string) bool {
	i, err := strconv.ParseInt(v, 10, 32)
	return err == nil && i != math.MinInt32
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	names := df.Names()
	if w.options.Header {
		if err := csvWriter.Write(names); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	record := make([]string, len(names))
	for _, rec := range df.Records() {
		for i, n := range rec {
			record[i] = w.format(n.Value)
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("writing CSV record: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV writer: %w", err)
	}
	return nil
}

// format renders v. Whole numbers keep a decimal point so they are read
// back as numbers rather than integers.
func (w *CSVWriter) format(v scalar.Scalar) string {
	if v.IsMissing() {
		return w.options.NA
	}
	s := v.String()
	if v.Kind() == scalar.KindNumber && !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// ToCSV renders df with the default options
func ToCSV(df *dataframe.DataFrame) (string, error) {
	var buf bytes.Buffer
	if err := NewCSVWriter(&buf, DefaultCSVOptions()).Write(df); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadCSV parses CSV text with the default options
func ReadCSV(text string) (*dataframe.DataFrame, error) {
	return NewCSVReader(strings.NewReader(text), DefaultCSVOptions()).Read()
}
