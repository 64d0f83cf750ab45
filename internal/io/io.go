// Package io reads and writes data frames in CSV, Arrow IPC, Parquet, and
// JSON.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - CSVReader/CSVWriter with per-column type inference
//   - Arrow record conversion shared by the IPC and Parquet backends
//   - JSONReader/JSONWriter over the record view of a frame
//
// Readers return ungrouped frames. Writers reject grouped frames with
// HasGroupsError, since no format here stores group levels.
package io

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paveg/tabeline/internal/config"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/parallel"
)

// DataReader reads one data frame from a source.
type DataReader interface {
	Read() (*dataframe.DataFrame, error)
}

// DataWriter writes one data frame to a destination.
type DataWriter interface {
	Write(df *dataframe.DataFrame) error
}

// Format names a file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatParquet
	FormatArrow
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	case FormatArrow:
		return "arrow"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectFormat picks a format from the extension of path.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	case ".parquet", ".pq":
		return FormatParquet
	case ".arrow", ".arrows", ".ipc", ".feather":
		return FormatArrow
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// ReadFile reads path with the backend its extension selects, using options
// from the global configuration. JSON files ending in .jsonl or .ndjson are
// read as JSON Lines.
func ReadFile(path string, logger *slog.Logger) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader, err := newReader(path, f, logger)
	if err != nil {
		return nil, err
	}
	df, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return df, nil
}

// ReadFiles reads every path with up to workers files open at once and
// stacks the frames in path order with dataframe.ConcatenateRows. A
// non-positive workers uses one goroutine per CPU.
func ReadFiles(ctx context.Context, paths []string, workers int, logger *slog.Logger) (*dataframe.DataFrame, error) {
	if len(paths) == 0 {
		return nil, errors.NewInvalidInputError("ReadFiles", "no input files")
	}
	frames, err := parallel.Map(ctx, parallel.NewWorkerPool(workers), paths,
		func(_ context.Context, path string) (*dataframe.DataFrame, error) {
			return ReadFile(path, logger)
		})
	if err != nil {
		return nil, err
	}
	return dataframe.ConcatenateRows(frames[0], frames[1:]...)
}

// WriteFile writes df to path with the backend its extension selects.
func WriteFile(path string, df *dataframe.DataFrame, logger *slog.Logger) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	writer, err := newWriter(path, f, logger)
	if err != nil {
		return err
	}
	if err := writer.Write(df); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func newReader(path string, r io.Reader, logger *slog.Logger) (DataReader, error) {
	switch DetectFormat(path) {
	case FormatCSV:
		options := DefaultCSVOptions()
		options.Logger = logger
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			options.Delimiter = '\t'
		}
		return NewCSVReader(r, options), nil
	case FormatParquet:
		options := DefaultParquetOptions()
		options.Logger = logger
		return NewParquetReader(r, options), nil
	case FormatArrow:
		return NewIPCReader(r, logger), nil
	case FormatJSON:
		options := DefaultJSONOptions()
		options.Logger = logger
		options.Format = jsonFormatOf(path)
		return NewJSONReader(r, options), nil
	default:
		return nil, fmt.Errorf("unsupported file format for %s", path)
	}
}

func newWriter(path string, w io.Writer, logger *slog.Logger) (DataWriter, error) {
	switch DetectFormat(path) {
	case FormatCSV:
		options := DefaultCSVOptions()
		options.Logger = logger
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			options.Delimiter = '\t'
		}
		return NewCSVWriter(w, options), nil
	case FormatParquet:
		options := DefaultParquetOptions()
		options.Logger = logger
		return NewParquetWriter(w, options), nil
	case FormatArrow:
		return NewIPCWriter(w, logger), nil
	case FormatJSON:
		options := DefaultJSONOptions()
		options.Logger = logger
		options.Format = jsonFormatOf(path)
		return NewJSONWriter(w, options), nil
	default:
		return nil, fmt.Errorf("unsupported file format for %s", path)
	}
}

func jsonFormatOf(path string) JSONFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return JSONLines
	default:
		return JSONArray
	}
}

// requireUngrouped fails with HasGroupsError for a grouped frame.
func requireUngrouped(op string, df *dataframe.DataFrame) error {
	if levels := df.GroupLevels(); len(levels) > 0 {
		return errors.Wrap(op, &errors.HasGroupsError{Groups: levels})
	}
	return nil
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// globalConfig is read once per options constructor.
func globalConfig() config.Config {
	return config.GetGlobalConfig().WithDefaults()
}
