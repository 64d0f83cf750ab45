package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/paveg/tabeline/internal/dataframe"
)

// JSONFormat selects the layout of JSON data.
type JSONFormat int

const (
	// JSONArray is a single array of objects.
	JSONArray JSONFormat = iota
	// JSONLines is one object per line.
	JSONLines
)

// JSONOptions contains configuration options for JSON operations
type JSONOptions struct {
	Format JSONFormat
	// MaxRecords limits the records read (0 = all)
	MaxRecords int
	// Indent pretty-prints array output with this indent string
	Indent string
	// Logger receives debug records; nil discards them
	Logger *slog.Logger
}

// DefaultJSONOptions returns options for compact JSON arrays.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Format: JSONArray}
}

// JSONReader reads an array or stream of flat objects into a data frame.
// Each column's type is inferred from its values.
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
}

// NewJSONReader creates a new JSON reader with the specified options
func NewJSONReader(reader io.Reader, options JSONOptions) *JSONReader {
	return &JSONReader{reader: reader, options: options}
}

// JSONWriter writes one object per row.
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
}

// NewJSONWriter creates a new JSON writer with the specified options
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{writer: writer, options: options}
}

// ReadJSON reads a JSON array of objects from r.
func ReadJSON(r io.Reader) (*dataframe.DataFrame, error) {
	return NewJSONReader(r, DefaultJSONOptions()).Read()
}

// WriteJSON writes df to w as a JSON array of objects.
func WriteJSON(w io.Writer, df *dataframe.DataFrame) error {
	return NewJSONWriter(w, DefaultJSONOptions()).Write(df)
}

// Read reads JSON data and returns a DataFrame.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	var records []dataframe.Record
	var err error
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

	df, err := dataframe.FromRecords(records...)
	if err != nil {
		return nil, err
	}
	loggerOrDiscard(r.options.Logger).Debug("read JSON", "rows", df.Height(), "columns", df.Width())
	return df, nil
}

func (r *JSONReader) readJSONArray() ([]dataframe.Record, error) {
	var records []dataframe.Record
	if err := json.NewDecoder(r.reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON array: %w", err)
	}
	if r.options.MaxRecords > 0 && len(records) > r.options.MaxRecords {
		records = records[:r.options.MaxRecords]
	}
	return records, nil
}

func (r *JSONReader) readJSONLines() ([]dataframe.Record, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []dataframe.Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record dataframe.Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("unmarshaling JSON line %d: %w", lineNum, err)
		}
		records = append(records, record)

		if r.options.MaxRecords > 0 && len(records) >= r.options.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return records, nil
}

// Write writes the DataFrame as JSON.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	if err := requireUngrouped("WriteJSON", df); err != nil {
		return err
	}

	records := df.Records()
	switch w.options.Format {
	case JSONArray:
		encoder := json.NewEncoder(w.writer)
		encoder.SetIndent("", w.options.Indent)
		if err := encoder.Encode(records); err != nil {
			return fmt.Errorf("encoding JSON array: %w", err)
		}
	case JSONLines:
		encoder := json.NewEncoder(w.writer)
		for i, record := range records {
			if err := encoder.Encode(record); err != nil {
				return fmt.Errorf("encoding JSON line %d: %w", i+1, err)
			}
		}
	default:
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	loggerOrDiscard(w.options.Logger).Debug("wrote JSON", "rows", df.Height(), "columns", df.Width())
	return nil
}
