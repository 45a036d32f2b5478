package frame

import (
	"sort"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// Row maps feature names to values for one property
type Row map[string]Value

// Frame is a column-major table. Every column has Len() values.
type Frame struct {
	columns []string
	index   map[string]int
	data    [][]Value
	rows    int
}

// New returns an empty frame with the given number of rows
func New(rows int) *Frame {
	return &Frame{
		index: make(map[string]int),
		rows:  rows,
	}
}

// FromRows builds a frame from property rows. Columns are the union of all
// keys; each row contributes its unseen keys in sorted order. A key a row
// does not have is Absent in that row; an explicit Missing value stays Missing.
func FromRows(rows []Row) *Frame {
	f := New(len(rows))
	for i, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			col, ok := f.index[k]
			if !ok {
				absent := make([]Value, f.rows)
				for j := range absent {
					absent[j] = Absent()
				}
				col = f.addColumn(k, absent)
			}
			f.data[col][i] = r[k]
		}
	}
	return f
}

// FromRecords parses delimited text records under header. Ragged records and
// duplicate header names are malformed input.
func FromRecords(header []string, records [][]string) (*Frame, error) {
	f := New(len(records))
	for _, name := range header {
		if _, dup := f.index[name]; dup {
			return nil, errors.Newf(errors.ErrorTypeMalformedInput, "duplicate column %q", name)
		}
		f.addColumn(name, make([]Value, len(records)))
	}

	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, errors.Newf(errors.ErrorTypeMalformedInput,
				"row %d has %d fields, header has %d", i+1, len(rec), len(header)).
				WithDetail("row", i+1)
		}
		for j, cell := range rec {
			f.data[j][i] = Parse(cell)
		}
	}
	return f, nil
}

func (f *Frame) addColumn(name string, values []Value) int {
	f.index[name] = len(f.columns)
	f.columns = append(f.columns, name)
	f.data = append(f.data, values)
	return len(f.columns) - 1
}

// Len returns the number of rows
func (f *Frame) Len() int { return f.rows }

// Columns returns a copy of the column names in order
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Has reports whether the frame has a column
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the values of a column. The slice is shared with the frame.
func (f *Frame) Column(name string) ([]Value, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.data[i], true
}

// Set adds or replaces a column. values must have Len() entries.
func (f *Frame) Set(name string, values []Value) error {
	if len(values) != f.rows {
		return errors.Newf(errors.ErrorTypeInternal,
			"column %q has %d values, frame has %d rows", name, len(values), f.rows)
	}
	if i, ok := f.index[name]; ok {
		f.data[i] = values
		return nil
	}
	f.addColumn(name, values)
	return nil
}

// At returns the cell at row i of column name
func (f *Frame) At(name string, i int) Value {
	col, ok := f.index[name]
	if !ok || i < 0 || i >= f.rows {
		return Missing()
	}
	return f.data[col][i]
}

// Row returns row i as a map
func (f *Frame) Row(i int) Row {
	r := make(Row, len(f.columns))
	for c, name := range f.columns {
		r[name] = f.data[c][i]
	}
	return r
}

// Slice returns rows [from, to) as a new frame sharing no value slices
func (f *Frame) Slice(from, to int) *Frame {
	out := New(to - from)
	for c, name := range f.columns {
		vals := make([]Value, to-from)
		copy(vals, f.data[c][from:to])
		out.addColumn(name, vals)
	}
	return out
}

// Clone deep-copies the frame so transforms never touch caller data
func (f *Frame) Clone() *Frame {
	return f.Slice(0, f.rows)
}

// Records renders the frame as text records, header first
func (f *Frame) Records() [][]string {
	out := make([][]string, 0, f.rows+1)
	out = append(out, f.Columns())
	for i := 0; i < f.rows; i++ {
		rec := make([]string, len(f.columns))
		for c := range f.columns {
			rec[c] = f.data[c][i].Text()
		}
		out = append(out, rec)
	}
	return out
}
