package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/paveg/tabeline/internal/dataframe"
)

// DefaultBatchSize is the default batch size for Parquet I/O.
const DefaultBatchSize = 1024

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression names the codec used when writing
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
	// Logger receives debug records; nil discards them
	Logger *slog.Logger
}

// DefaultParquetOptions returns Parquet options from the global configuration.
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: globalConfig().ParquetCompression,
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data into a data frame
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions) *ParquetReader {
	return &ParquetReader{reader: reader, options: options}
}

// ParquetWriter writes data frames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{writer: writer, options: options}
}

// ReadParquet reads a data frame from r.
func ReadParquet(r io.Reader, options ParquetOptions) (*dataframe.DataFrame, error) {
	return NewParquetReader(r, options).Read()
}

// ReadParquetFile reads a data frame from the Parquet file at path.
func ReadParquetFile(path string, options ParquetOptions) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadParquet(f, options)
}

// WriteParquet writes df to w.
func WriteParquet(w io.Writer, df *dataframe.DataFrame, options ParquetOptions) error {
	return NewParquetWriter(w, options).Write(df)
}

// Read reads Parquet data and returns a DataFrame.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	// Parquet needs random access, so the input is buffered in memory.
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	props := pqarrow.ArrowReadProperties{BatchSize: int64(r.batchSize())}
	arrowReader, err := pqarrow.NewFileReader(pqReader, props, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	df, err := fromTable(table)
	if err != nil {
		return nil, err
	}
	loggerOrDiscard(r.options.Logger).Debug("read Parquet", "rows", df.Height(), "columns", df.Width(),
		"row_groups", pqReader.NumRowGroups())
	return df, nil
}

func (r *ParquetReader) batchSize() int {
	if r.options.BatchSize > 0 {
		return r.options.BatchSize
	}
	return DefaultBatchSize
}

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	rec, err := ToRecord(df)
	if err != nil {
		return err
	}
	defer rec.Release()

	codec, err := compressionCodec(w.options.Compression)
	if err != nil {
		return err
	}
	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithBatchSize(int64(max(w.options.BatchSize, 1))),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(memory.DefaultAllocator),
		pqarrow.WithStoreSchema(),
	)

	table := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer table.Release()

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}
	if err := writer.WriteTable(table, int64(max(df.Height(), 1))); err != nil {
		writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	loggerOrDiscard(w.options.Logger).Debug("wrote Parquet", "rows", df.Height(), "columns", df.Width(),
		"compression", w.options.Compression)
	return nil
}

// compressionCodec maps a configured codec name onto a Parquet codec.
func compressionCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet compression %q", name)
	}
}
