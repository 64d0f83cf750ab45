package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/datatype"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment starts a comment line when reading (0 = disabled)
	Comment rune
	// NullValue is read as null besides the empty field, and written for null
	NullValue string
	// Logger receives debug records; nil discards them
	Logger *slog.Logger
}

// DefaultCSVOptions returns CSV options from the global configuration.
func DefaultCSVOptions() CSVOptions {
	cfg := globalConfig()
	return CSVOptions{
		Delimiter: cfg.Delimiter(),
		Comment:   cfg.Comment(),
		NullValue: cfg.NullValue,
	}
}

// CSVReader reads headered CSV data into a data frame
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{reader: reader, options: options}
}

// CSVWriter writes data frames as headered CSV
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{writer: writer, options: options}
}

// ReadCSV reads a data frame from r.
func ReadCSV(r io.Reader, options CSVOptions) (*dataframe.DataFrame, error) {
	return NewCSVReader(r, options).Read()
}

// ReadCSVFile reads a data frame from the CSV file at path.
func ReadCSVFile(path string, options CSVOptions) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, options)
}

// WriteCSV writes df to w.
func WriteCSV(w io.Writer, df *dataframe.DataFrame, options CSVOptions) error {
	return NewCSVWriter(w, options).Write(df)
}

// WriteCSVFile writes df to the CSV file at path.
func WriteCSVFile(path string, df *dataframe.DataFrame, options CSVOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()
	return WriteCSV(f, df, options)
}

// Read reads CSV data and returns a DataFrame. The first record names the
// columns. Empty input yields a frame without rows or columns.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	logger := loggerOrDiscard(r.options.Logger)

	csvReader := csv.NewReader(r.reader)
	if r.options.Delimiter != 0 {
		csvReader.Comma = r.options.Delimiter
	}
	csvReader.Comment = r.options.Comment

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return dataframe.Columnless(0), nil
	}

	headers, rows := records[0], records[1:]
	columns := make([]dataframe.Column, len(headers))
	fields := make([]string, len(rows))
	for i, header := range headers {
		for j, row := range rows {
			fields[j] = row[i]
		}
		values, err := r.parseColumn(fields)
		if err != nil {
			return nil, fmt.Errorf("parsing column %s: %w", header, err)
		}
		columns[i] = dataframe.Column{Name: header, Values: values}
	}

	df, err := dataframe.FromColumns(len(rows), columns...)
	if err != nil {
		return nil, err
	}
	logger.Debug("read CSV", "rows", len(rows), "columns", len(headers))
	return df, nil
}

func (r *CSVReader) isNull(field string) bool {
	return field == "" || (r.options.NullValue != "" && field == r.options.NullValue)
}

// parseColumn builds an array from text fields with the inferred type.
func (r *CSVReader) parseColumn(fields []string) (*array.Array, error) {
	dt := r.inferDataType(fields)
	b := array.NewBuilder(dt, len(fields))
	for _, field := range fields {
		if r.isNull(field) {
			b.AppendNull()
			continue
		}
		switch dt {
		case datatype.Boolean:
			b.AppendBool(strings.EqualFold(field, trueStr))
		case datatype.Integer64:
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, err
			}
			b.AppendInt(v)
		case datatype.Float64:
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			b.AppendFloat(v)
		default:
			b.AppendString(field)
		}
	}
	return b.Finish(), nil
}

// inferDataType determines the most specific type every non-null field
// parses as. A column of nulls is Nothing.
func (r *CSVReader) inferDataType(fields []string) datatype.DataType {
	canBeBool := true
	canBeInt := true
	canBeFloat := true
	hasNonEmptyValue := false

	for _, field := range fields {
		if r.isNull(field) {
			continue
		}
		hasNonEmptyValue = true

		if canBeBool {
			lower := strings.ToLower(field)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(field, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasNonEmptyValue:
		return datatype.Nothing
	case canBeBool:
		return datatype.Boolean
	case canBeInt:
		return datatype.Integer64
	case canBeFloat:
		return datatype.Float64
	default:
		return datatype.String
	}
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	if err := requireUngrouped("WriteCSV", df); err != nil {
		return err
	}
	logger := loggerOrDiscard(w.options.Logger)

	csvWriter := csv.NewWriter(w.writer)
	if w.options.Delimiter != 0 {
		csvWriter.Comma = w.options.Delimiter
	}

	if err := csvWriter.Write(df.ColumnNames()); err != nil {
		return fmt.Errorf("writing headers: %w", err)
	}

	columns := df.Columns()
	row := make([]string, len(columns))
	for i := range df.Height() {
		for j, column := range columns {
			if column.Values.IsNull(i) {
				row[j] = w.options.NullValue
				continue
			}
			row[j] = column.Values.FormatElement(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	logger.Debug("wrote CSV", "rows", df.Height(), "columns", df.Width())
	return nil
}
