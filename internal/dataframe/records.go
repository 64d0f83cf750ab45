package dataframe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/validation"
)

// Record is one row as an ordered mapping from column name to value. Values
// are Go scalars as returned by Array.Item, with nil for null.
type Record struct {
	names  []string
	values []any
}

// NewRecord pairs names with values. Both slices must have the same length.
func NewRecord(names []string, values []any) Record {
	return Record{names: slices.Clone(names), values: slices.Clone(values)}
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.names) }

// Names returns the field names in order.
func (r Record) Names() []string { return slices.Clone(r.names) }

// Values returns the field values in order.
func (r Record) Values() []any { return slices.Clone(r.values) }

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	if i := slices.Index(r.names, name); i >= 0 {
		return r.values[i], true
	}
	return nil, false
}

// Set replaces the named field or appends it.
func (r *Record) Set(name string, value any) {
	if i := slices.Index(r.names, name); i >= 0 {
		r.values[i] = value
		return
	}
	r.names = append(r.names, name)
	r.values = append(r.values, value)
}

// MarshalJSON writes the record as an object with fields in order. Floats
// that JSON cannot express are written as the strings "nan", "inf", and
// "-inf".
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value := r.values[i]
		switch f := value.(type) {
		case float64:
			buf.WriteString(floatJSON(f, 64))
			continue
		case float32:
			buf.WriteString(floatJSON(float64(f), 32))
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", name, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// floatJSON keeps a decimal point on whole floats so they read back as
// floats.
func floatJSON(f float64, bitSize int) string {
	text := array.FormatFloat(f, bitSize)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.Quote(text)
	}
	return text
}

// UnmarshalJSON reads a flat object, keeping its field order. Whole numbers
// become int64, other numbers float64. Nested objects and arrays are
// rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	r.names, r.values = nil, nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		if tok, err = dec.Token(); err != nil {
			return err
		}
		value, err := scalar(tok)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		r.Set(name, value)
	}
	_, err = dec.Token()
	return err
}

func scalar(tok json.Token) (any, error) {
	switch v := tok.(type) {
	case nil, bool, string:
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	case json.Delim:
		return nil, fmt.Errorf("nested values are not supported")
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// FromRecords builds an ungrouped frame from rows. Columns appear in the
// order their names are first seen, a field missing from a record is null,
// and each column's type is inferred from its values.
func FromRecords(records ...Record) (*DataFrame, error) {
	var names []string
	for _, r := range records {
		for _, name := range r.names {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	columns := make([]Column, len(names))
	for j, name := range names {
		values := make([]any, len(records))
		for i, r := range records {
			values[i], _ = r.Get(name)
		}
		a, err := array.FromSequence(values)
		if err != nil {
			return nil, errors.WrapColumn("FromRecords", name, err)
		}
		columns[j] = Column{Name: name, Values: a}
	}
	return FromColumns(len(records), columns...)
}

// Records returns every row of the frame.
func (df *DataFrame) Records() []Record {
	out := make([]Record, df.height)
	for i := range out {
		out[i] = df.record(i)
	}
	return out
}

func (df *DataFrame) record(i int) Record {
	values := make([]any, len(df.names))
	for j, name := range df.names {
		values[j] = df.columns[name].Item(i)
	}
	return Record{names: slices.Clone(df.names), values: values}
}

// Item returns the value at row of column, ignoring groups.
func (df *DataFrame) Item(row int, column string) (any, error) {
	if err := validation.NewCompoundValidator(
		validation.NewIndexValidator("Item", df.height, false, row),
		validation.NewColumnValidator(df, "Item", column),
	).Validate(); err != nil {
		return nil, err
	}
	return df.columns[column].Item(row), nil
}

// Row returns the record at row, ignoring groups.
func (df *DataFrame) Row(row int) (Record, error) {
	if err := validation.ValidateIndexes("Row", df.height, false, row); err != nil {
		return Record{}, err
	}
	return df.record(row), nil
}

// Take returns an ungrouped frame of the given rows and columns, in the
// given orders. Rows may repeat.
func (df *DataFrame) Take(rows []int, columns []string) (*DataFrame, error) {
	if err := validation.NewCompoundValidator(
		validation.NewIndexValidator("Take", df.height, false, rows...),
		validation.NewUniqueValidator("Take", columns...),
		validation.NewColumnValidator(df, "Take", columns...),
	).Validate(); err != nil {
		return nil, err
	}
	out := make(map[string]*array.Array, len(columns))
	for _, name := range columns {
		out[name] = df.columns[name].Take(rows)
	}
	return df.derive(slices.Clone(columns), out, len(rows), nil), nil
}
