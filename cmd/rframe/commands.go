package main

import (
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/io"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/version"
	"github.com/spf13/cobra"
)

const (
	formatCSV   = "csv"
	formatJSON  = "json"
	formatLines = "jsonl"
	formatTable = "table"
)

// formatOf returns override, or the format implied by the file extension
func formatOf(path, override string) (string, error) {
	if override != "" {
		switch override {
		case formatCSV, formatJSON, formatLines, formatTable:
			return override, nil
		}
		return "", fmt.Errorf("unknown format %q", override)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV, nil
	case ".json":
		return formatJSON, nil
	case ".jsonl", ".ndjson":
		return formatLines, nil
	}
	return "", fmt.Errorf("cannot infer format of %q, use --from or --to", path)
}

func readFrame(cmd *cobra.Command, path, format string) (*dataframe.DataFrame, error) {
	format, err := formatOf(path, format)
	if err != nil {
		return nil, err
	}

	var r stdio.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var reader io.DataReader
	switch format {
	case formatCSV:
		reader = io.NewCSVReader(r, io.DefaultCSVOptions())
	case formatJSON:
		reader = io.NewJSONReader(r, io.DefaultJSONOptions())
	case formatLines:
		reader = io.NewJSONReader(r, io.JSONOptions{Format: io.JSONLines})
	default:
		return nil, fmt.Errorf("cannot read %s input", format)
	}

	df, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return df, nil
}

func writerFor(w stdio.Writer, format string) io.DataWriter {
	switch format {
	case formatCSV:
		return io.NewCSVWriter(w, io.DefaultCSVOptions())
	case formatJSON:
		return io.NewJSONWriter(w, io.JSONOptions{Format: io.JSONArray, Indent: true})
	case formatLines:
		return io.NewJSONWriter(w, io.JSONOptions{Format: io.JSONLines})
	}
	return io.NewTableWriter(w, io.TableOptions{ShowKinds: true})
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func requireColumns(df *dataframe.DataFrame, names []string) error {
	for _, name := range names {
		if !df.HasColumn(name) {
			return fmt.Errorf("unknown column %q", name)
		}
	}
	return nil
}

func newSummarizeCmd() *cobra.Command {
	var from, groupBy string

	cmd := &cobra.Command{
		Use:   "summarize FILE",
		Short: "Describe the columns of a file, optionally per group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(cmd, args[0], from)
			if err != nil {
				return err
			}
			out := io.NewTableWriter(cmd.OutOrStdout(), io.TableOptions{})

			keys := splitList(groupBy)
			if len(keys) == 0 {
				return out.WriteSummary(df)
			}
			if err := requireColumns(df, keys); err != nil {
				return err
			}
			summary, err := summarizeGroups(df.GroupBy(keys...))
			if err != nil {
				return err
			}
			return out.Write(summary)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Input format (csv, json, jsonl)")
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "", "Comma separated grouping columns")
	return cmd
}

// summarizeGroups reports the row count and the mean of every integer and
// numeric column of each group
func summarizeGroups(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return df.GroupModify(func(data *dataframe.DataFrame, _ scalar.Record) (*dataframe.DataFrame, error) {
		rec := scalar.Record{{Name: "n", Value: scalar.Integer(int32(data.NRow()))}}
		for name, col := range data.All() {
			if col.Kind() != scalar.KindInteger && col.Kind() != scalar.KindNumber {
				continue
			}
			nums, err := col.Cast(scalar.KindNumber)
			if err != nil {
				return nil, err
			}
			sum, n := 0.0, 0
			for _, v := range nums.Values() {
				if f, ok := v.Float(); ok {
					sum += f
					n++
				}
			}
			mean := scalar.Missing(scalar.KindNumber)
			if n > 0 {
				mean = scalar.Number(sum / float64(n))
			}
			rec = append(rec, scalar.Named{Name: "mean_" + name, Value: mean})
		}

		out := dataframe.New()
		if err := out.AddRow(rec); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func newConvertCmd() *cobra.Command {
	var from, to, selectCols string
	var limit int

	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert between CSV, JSON and JSON lines",
		Long: `Convert reads IN and writes OUT, inferring both formats from the file
extensions unless --from or --to is given. Use - for stdin or stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(cmd, args[0], from)
			if err != nil {
				return err
			}
			if cols := splitList(selectCols); len(cols) > 0 {
				if err := requireColumns(df, cols); err != nil {
					return err
				}
				df = df.Select(cols...)
			}
			if limit > 0 && limit < df.NRow() {
				if df, err = df.Subset(0, limit); err != nil {
					return err
				}
			}

			format, err := formatOf(args[1], to)
			if err != nil {
				return err
			}
			if args[1] == "-" {
				return writerFor(cmd.OutOrStdout(), format).Write(df)
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := writerFor(f, format).Write(df); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Input format (csv, json, jsonl)")
	cmd.Flags().StringVar(&to, "to", "", "Output format (csv, json, jsonl, table)")
	cmd.Flags().StringVarP(&selectCols, "select", "s", "", "Comma separated columns to keep")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Keep only the first n rows")
	return cmd
}

func newHeadCmd() *cobra.Command {
	var from string
	var rows int

	cmd := &cobra.Command{
		Use:   "head FILE",
		Short: "Print the first rows of a file as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(cmd, args[0], from)
			if err != nil {
				return err
			}
			opts := io.DefaultTableOptions()
			opts.MaxRows = rows
			return io.NewTableWriter(cmd.OutOrStdout(), opts).Write(df)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Input format (csv, json, jsonl)")
	cmd.Flags().IntVarP(&rows, "rows", "n", io.DefaultMaxRows, "Rows to print (0 = all)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info()
			if !asJSON {
				_, err := fmt.Fprint(cmd.OutOrStdout(), info.String())
				return err
			}
			data, err := info.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	return cmd
}
