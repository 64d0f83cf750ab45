package io

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/datatype"
)

// heightMetadataKey holds the row count in schema metadata, so a frame
// without columns keeps its height through Arrow.
const heightMetadataKey = "tabeline.height"

// ToRecord converts df to an Arrow record sharing the column buffers. Nothing
// columns become Arrow null arrays.
func ToRecord(df *dataframe.DataFrame) (arrow.Record, error) {
	if err := requireUngrouped("ToRecord", df); err != nil {
		return nil, err
	}

	columns := df.Columns()
	fields := make([]arrow.Field, len(columns))
	arrays := make([]arrow.Array, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.Name, Type: datatype.ToArrow(c.Values.DataType()), Nullable: true}
		arrays[i] = c.Values.Arrow()
	}
	metadata := arrow.NewMetadata([]string{heightMetadataKey}, []string{strconv.Itoa(df.Height())})
	schema := arrow.NewSchema(fields, &metadata)
	return arrowarray.NewRecord(schema, arrays, int64(df.Height())), nil
}

// FromRecord converts an Arrow record to an ungrouped frame. For a record
// without columns the height comes from the schema metadata when present.
func FromRecord(rec arrow.Record) (*dataframe.DataFrame, error) {
	height := int(rec.NumRows())
	if rec.NumCols() == 0 {
		h, err := metadataHeight(rec.Schema())
		if err != nil {
			return nil, err
		}
		if h >= 0 {
			height = h
		}
	}

	columns := make([]dataframe.Column, rec.NumCols())
	for i, field := range rec.Schema().Fields() {
		values, err := fromArrow(rec.Column(i))
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
		}
		columns[i] = dataframe.Column{Name: field.Name, Values: values}
	}
	return dataframe.FromColumns(height, columns...)
}

// fromTable converts a possibly chunked Arrow table to an ungrouped frame.
func fromTable(table arrow.Table) (*dataframe.DataFrame, error) {
	height := int(table.NumRows())
	if table.NumCols() == 0 {
		h, err := metadataHeight(table.Schema())
		if err != nil {
			return nil, err
		}
		if h >= 0 {
			height = h
		}
	}

	columns := make([]dataframe.Column, table.NumCols())
	for i := range int(table.NumCols()) {
		field := table.Schema().Field(i)
		values, err := fromChunks(field.Type, table.Column(i).Data().Chunks())
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
		}
		columns[i] = dataframe.Column{Name: field.Name, Values: values}
	}
	return dataframe.FromColumns(height, columns...)
}

func fromChunks(dt arrow.DataType, chunks []arrow.Array) (*array.Array, error) {
	switch len(chunks) {
	case 0:
		t, err := datatype.FromArrow(dt)
		if err != nil {
			return nil, err
		}
		return array.Nulls(t, 0), nil
	case 1:
		return fromArrow(chunks[0])
	}
	combined, err := arrowarray.Concatenate(chunks, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	defer combined.Release()
	return fromArrow(combined)
}

// fromArrow wraps data, copying large strings into a regular string array.
func fromArrow(data arrow.Array) (*array.Array, error) {
	large, ok := data.(*arrowarray.LargeString)
	if !ok {
		return array.FromArrow(data)
	}
	b := array.NewBuilder(datatype.String, large.Len())
	for i := range large.Len() {
		if large.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.AppendString(large.Value(i))
	}
	return b.Finish(), nil
}

// metadataHeight returns the recorded height, or -1 when there is none.
func metadataHeight(schema *arrow.Schema) (int, error) {
	md := schema.Metadata()
	i := md.FindKey(heightMetadataKey)
	if i < 0 {
		return -1, nil
	}
	h, err := strconv.Atoi(md.Values()[i])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("invalid %s metadata %q", heightMetadataKey, md.Values()[i])
	}
	return h, nil
}

// IPCReader reads an Arrow IPC stream into a data frame.
type IPCReader struct {
	reader io.Reader
	logger *slog.Logger
}

// NewIPCReader creates a reader for the Arrow IPC stream format.
func NewIPCReader(reader io.Reader, logger *slog.Logger) *IPCReader {
	return &IPCReader{reader: reader, logger: logger}
}

// IPCWriter writes a data frame as an Arrow IPC stream of one record.
type IPCWriter struct {
	writer io.Writer
	logger *slog.Logger
}

// NewIPCWriter creates a writer for the Arrow IPC stream format.
func NewIPCWriter(writer io.Writer, logger *slog.Logger) *IPCWriter {
	return &IPCWriter{writer: writer, logger: logger}
}

// ReadIPC reads an Arrow IPC stream from r.
func ReadIPC(r io.Reader) (*dataframe.DataFrame, error) {
	return NewIPCReader(r, nil).Read()
}

// WriteIPC writes df to w as an Arrow IPC stream.
func WriteIPC(w io.Writer, df *dataframe.DataFrame) error {
	return NewIPCWriter(w, nil).Write(df)
}

// Read reads every record of the stream and stacks them.
func (r *IPCReader) Read() (*dataframe.DataFrame, error) {
	logger := loggerOrDiscard(r.logger)

	rdr, err := ipc.NewReader(r.reader, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("opening IPC stream: %w", err)
	}
	defer rdr.Release()

	var frames []*dataframe.DataFrame
	for rdr.Next() {
		df, err := FromRecord(rdr.Record())
		if err != nil {
			return nil, err
		}
		frames = append(frames, df)
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading IPC stream: %w", err)
	}

	if len(frames) == 0 {
		empty := arrowarray.NewRecord(rdr.Schema(), emptyArrays(rdr.Schema()), 0)
		defer empty.Release()
		return FromRecord(empty)
	}
	df, err := dataframe.ConcatenateRows(frames[0], frames[1:]...)
	if err != nil {
		return nil, err
	}
	logger.Debug("read IPC stream", "records", len(frames), "rows", df.Height())
	return df, nil
}

func emptyArrays(schema *arrow.Schema) []arrow.Array {
	arrays := make([]arrow.Array, schema.NumFields())
	for i, field := range schema.Fields() {
		b := arrowarray.NewBuilder(memory.DefaultAllocator, field.Type)
		arrays[i] = b.NewArray()
		b.Release()
	}
	return arrays
}

// Write writes df as a single record.
func (w *IPCWriter) Write(df *dataframe.DataFrame) error {
	rec, err := ToRecord(df)
	if err != nil {
		return err
	}
	defer rec.Release()

	writer := ipc.NewWriter(w.writer, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("writing IPC record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing IPC stream: %w", err)
	}
	loggerOrDiscard(w.logger).Debug("wrote IPC stream", "rows", df.Height(), "columns", df.Width())
	return nil
}
