package io

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paveg/rframe/internal/collect"
	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/scalar"
)

// Read reads JSON data and returns a DataFrame.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	var (
		records []map[string]any
		err     error
	)
	switch r.options.Format {
	case JSONArray:
		records, err = r.readJSONArray()
	case JSONLines:
		records, err = r.readJSONLines()
	default:
		return nil, fmt.Errorf("unsupported JSON format: %d", r.options.Format)
	}
	if err != nil {
		return nil, err
	}
	if r.options.MaxRecords > 0 && len(records) > r.options.MaxRecords {
		records = records[:r.options.MaxRecords]
	}

	var opts []collect.Option
	if r.options.Strict {
		opts = append(opts, collect.StrictConversion())
	}
	return collect.CollectMaps(records, opts...)
}

// readJSONArray reads JSON array format.
func (r *JSONReader) readJSONArray() ([]map[string]any, error) {
	dec := json.NewDecoder(r.reader)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("unmarshaling JSON array: %w", err)
	}
	return records, nil
}

// readJSONLines reads JSON Lines format.
func (r *JSONReader) readJSONLines() ([]map[string]any, error) {
	scanner := bufio.NewScanner(r.reader)
	var records []map[string]any

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("unmarshaling JSON line %d: %w", lineNum, err)
		}
		records = append(records, record)

		if r.options.MaxRecords > 0 && len(records) >= r.options.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSON lines: %w", err)
	}
	return records, nil
}

// Write writes the DataFrame as JSON. Objects keep the frame's column order.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	var buf bytes.Buffer
	records := df.Records()

	switch w.options.Format {
	case JSONArray:
		buf.WriteByte('[')
		for i, rec := range records {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeObject(&buf, rec); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		if w.options.Indent {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, buf.Bytes(), "", "  "); err != nil {
				return fmt.Errorf("indenting JSON: %w", err)
			}
			buf = pretty
		}
		buf.WriteByte('\n')
	case JSONLines:
		for _, rec := range records {
			if err := writeObject(&buf, rec); err != nil {
				return err
			}
			buf.WriteByte('\n')
		}
	default:
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	if _, err := w.writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, rec scalar.Record) error {
	buf.WriteByte('{')
	for i, n := range rec {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n.Name)
		if err != nil {
			return fmt.Errorf("marshaling JSON key %s: %w", n.Name, err)
		}
		value, err := json.Marshal(jsonValue(n.Value))
		if err != nil {
			return fmt.Errorf("marshaling JSON value for %s: %w", n.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

// jsonValue maps a scalar to a value JSON can carry: missing becomes null,
// dates and non-finite numbers become their printed text
func jsonValue(v scalar.Scalar) any {
	if v.IsMissing() {
		return nil
	}
	switch v.Kind() {
	case scalar.KindNumber:
		f, _ := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String()
		}
		return f
	case scalar.KindDate:
		return v.String()
	}
	return v.Get()
}

// ToJSON renders df as an indented JSON array
func ToJSON(df *dataframe.DataFrame) (string, error) {
	var buf bytes.Buffer
	if err := NewJSONWriter(&buf, JSONOptions{Format: JSONArray, Indent: true}).Write(df); err != nil {
		return "", err
	}
	return buf.String(), nil
}
