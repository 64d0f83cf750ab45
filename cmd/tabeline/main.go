// Command tabeline runs a filter, mutate, group, summarize, sort, and select
// pipeline over a table file and prints or writes the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/paveg/tabeline/internal/config"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/expr"
	tabio "github.com/paveg/tabeline/internal/io"
	"github.com/paveg/tabeline/internal/monitoring"
	"github.com/paveg/tabeline/internal/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// listFlag collects every occurrence of a repeated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, "; ") }

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type options struct {
	inputs     listFlag
	output     string
	filters    listFlag
	mutations  listFlag
	groupBys   listFlag
	groupOrder string
	summaries  listFlag
	sortBy     string
	selection  string
	configFile string
	logLevel   string
	workers    int
	schema     bool
	stats      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("tabeline", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&opts.inputs, "in", "Input file (.csv, .tsv, .parquet, .arrow, .json, .jsonl); repeat to stack files")
	fs.StringVar(&opts.output, "out", "", "Output file; the table is printed when empty")
	fs.Var(&opts.filters, "filter", "Keep rows where the formula is true; repeatable")
	fs.Var(&opts.mutations, "mutate", "Add or replace a column, as name=formula; repeatable")
	fs.Var(&opts.groupBys, "group-by", "Comma-separated columns of a new group level; repeat for nested levels")
	fs.StringVar(&opts.groupOrder, "group-order", "original", "Row order for group-by: original, cluster, or sort")
	fs.Var(&opts.summaries, "summarize", "Reduce each group, as name=formula; repeatable")
	fs.StringVar(&opts.sortBy, "sort", "", "Comma-separated columns to sort by")
	fs.StringVar(&opts.selection, "select", "", "Comma-separated columns to keep")
	fs.StringVar(&opts.configFile, "config", "", "Configuration file (.json, .yaml, .yml)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	fs.IntVar(&opts.workers, "workers", 0, "Files read at once (0 = one per CPU)")
	fs.BoolVar(&opts.schema, "schema", false, "Print column names and types instead of rows")
	fs.BoolVar(&opts.stats, "stats", false, "Print the rows and time of each step to stderr")
	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s\n\n", version.Short())
		fmt.Fprintf(stderr, "Usage: tabeline -in FILE [options]\n\n")
		fmt.Fprintf(stderr, "Steps run in this order: filter, mutate, group-by, summarize, sort, select.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	errorColor := color.New(color.FgRed, color.Bold)

	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		errorColor.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if opts.version {
		color.New(color.FgCyan, color.Bold).Fprint(stdout, version.Info().String())
		return 0
	}
	if len(opts.inputs) == 0 {
		errorColor.Fprintln(stderr, "error: at least one -in file is required")
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		errorColor.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	config.SetGlobalConfig(cfg)
	logger := cfg.NewLogger(stderr)

	if err := execute(ctx, opts, logger, stdout, stderr); err != nil {
		logger.Error("pipeline failed", "error", err)
		errorColor.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(opts *options) (config.Config, error) {
	cfg := config.LoadFromEnv()
	if opts.configFile != "" {
		loaded, err := config.LoadFromFile(opts.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func execute(ctx context.Context, opts *options, logger *slog.Logger, stdout, stderr io.Writer) error {
	stats := monitoring.NewMetricsCollector(opts.stats)

	var df *dataframe.DataFrame
	err := stats.Record("read", 0, func() (int, error) {
		var err error
		df, err = tabio.ReadFiles(ctx, opts.inputs, opts.workers, logger)
		if err != nil {
			return 0, err
		}
		return df.Height(), nil
	})
	if err != nil {
		return err
	}
	logger.Debug("read input", "files", len(opts.inputs), "height", df.Height(), "width", df.Width())

	if df, err = pipeline(df, opts, stats, logger); err != nil {
		return err
	}

	switch {
	case opts.output != "":
		ungrouped := df.UngroupAll()
		err = stats.Record("write", ungrouped.Height(), func() (int, error) {
			return ungrouped.Height(), tabio.WriteFile(opts.output, ungrouped, logger)
		})
		if err != nil {
			return err
		}
		logger.Debug("wrote output", "path", opts.output, "height", df.Height())
	case opts.schema:
		printSchema(stdout, df)
	default:
		if _, err := fmt.Fprint(stdout, df.String()); err != nil {
			return err
		}
	}

	if stats.IsEnabled() {
		stats.WriteTable(stderr)
	}
	return nil
}

// stepper applies pipeline steps to a frame, timing each one.
type stepper struct {
	df     *dataframe.DataFrame
	stats  *monitoring.MetricsCollector
	logger *slog.Logger
}

func (s *stepper) apply(name string, step func(*dataframe.DataFrame) (*dataframe.DataFrame, error)) error {
	return s.stats.Record(name, s.df.Height(), func() (int, error) {
		next, err := step(s.df)
		if err != nil {
			return 0, err
		}
		s.df = next
		s.logger.Debug(name, "height", next.Height(), "width", next.Width())
		return next.Height(), nil
	})
}

func pipeline(df *dataframe.DataFrame, opts *options, stats *monitoring.MetricsCollector, logger *slog.Logger) (*dataframe.DataFrame, error) {
	s := &stepper{df: df, stats: stats, logger: logger}

	for _, source := range opts.filters {
		predicate, err := expr.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("-filter %q: %w", source, err)
		}
		if err := s.apply("filter", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return df.Filter(predicate)
		}); err != nil {
			return nil, err
		}
	}

	if len(opts.mutations) > 0 {
		assignments, err := parseAssignments("mutate", opts.mutations)
		if err != nil {
			return nil, err
		}
		if err := s.apply("mutate", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return df.Mutate(assignments...)
		}); err != nil {
			return nil, err
		}
	}

	order, err := parseGroupOrder(opts.groupOrder)
	if err != nil {
		return nil, err
	}
	for _, level := range opts.groupBys {
		columns := splitColumns(level)
		if err := s.apply("group-by", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return df.GroupBy(order, columns...)
		}); err != nil {
			return nil, err
		}
	}

	if len(opts.summaries) > 0 {
		assignments, err := parseAssignments("summarize", opts.summaries)
		if err != nil {
			return nil, err
		}
		if err := s.apply("summarize", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return df.Summarize(assignments...)
		}); err != nil {
			return nil, err
		}
	}

	if columns := splitColumns(opts.sortBy); len(columns) > 0 {
		if err := s.apply("sort", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return df.Sort(columns...)
		}); err != nil {
			return nil, err
		}
	}

	if columns := splitColumns(opts.selection); len(columns) > 0 {
		if err := s.apply("select", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return df.Select(columns...)
		}); err != nil {
			return nil, err
		}
	}
	return s.df, nil
}

// parseAssignments reads name=formula pairs. Only the first '=' separates
// the name, so formulas may contain comparisons.
func parseAssignments(flagName string, values []string) ([]dataframe.Assignment, error) {
	assignments := make([]dataframe.Assignment, 0, len(values))
	for _, value := range values {
		name, source, ok := strings.Cut(value, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.HasPrefix(source, "=") {
			return nil, fmt.Errorf("-%s %q: expected name=formula", flagName, value)
		}
		e, err := expr.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("-%s %q: %w", flagName, value, err)
		}
		assignments = append(assignments, dataframe.Assignment{Name: name, Expr: e})
	}
	return assignments, nil
}

func parseGroupOrder(name string) (dataframe.GroupOrder, error) {
	for _, order := range []dataframe.GroupOrder{dataframe.OriginalOrder, dataframe.ClusterOrder, dataframe.SortOrder} {
		if strings.EqualFold(name, order.String()) {
			return order, nil
		}
	}
	return 0, fmt.Errorf("-group-order must be original, cluster, or sort, got %q", name)
}

func splitColumns(list string) []string {
	var columns []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			columns = append(columns, part)
		}
	}
	return columns
}

func printSchema(w io.Writer, df *dataframe.DataFrame) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"column", "type", "nulls"})
	for _, column := range df.Columns() {
		table.Append([]string{
			column.Name,
			column.Values.DataType().String(),
			fmt.Sprint(column.Values.NullCount()),
		})
	}
	table.SetFooter([]string{"", "rows", fmt.Sprint(df.Height())})
	table.Render()
}
