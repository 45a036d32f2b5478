package formats

import (
	"bytes"
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
)

// ReadParquet reads a whole Parquet file into a frame. Numeric columns become
// numbers, string columns are classified cell by cell like CSV text, and
// nulls are missing.
func ReadParquet(ctx context.Context, r io.Reader) (*frame.Frame, error) {
	// the parquet footer needs random access
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "read parquet input")
	}

	fr, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "open parquet input")
	}
	defer fr.Close()

	pool := memory.NewGoAllocator()
	ar, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{}, pool)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "open parquet columns")
	}

	tbl, err := ar.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "read parquet table")
	}
	defer tbl.Release()

	rows := int(tbl.NumRows())
	if rows == 0 {
		return nil, errors.New(errors.ErrorTypeMalformedInput, "input has no rows")
	}

	f := frame.New(rows)
	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		if f.Has(col.Name()) {
			return nil, errors.Newf(errors.ErrorTypeMalformedInput, "duplicate column %q", col.Name())
		}

		values := make([]frame.Value, 0, rows)
		for _, chunk := range col.Data().Chunks() {
			values = appendValues(values, chunk)
		}
		if err := f.Set(col.Name(), values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func appendValues(out []frame.Value, arr arrow.Array) []frame.Value {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			out = append(out, frame.Missing())
			continue
		}
		out = append(out, cell(arr, i))
	}
	return out
}

func cell(arr arrow.Array, i int) frame.Value {
	switch a := arr.(type) {
	case *array.Float64:
		return frame.Number(a.Value(i))
	case *array.Float32:
		return frame.Number(float64(a.Value(i)))
	case *array.Int64:
		return frame.Number(float64(a.Value(i)))
	case *array.Int32:
		return frame.Number(float64(a.Value(i)))
	case *array.Int16:
		return frame.Number(float64(a.Value(i)))
	case *array.Int8:
		return frame.Number(float64(a.Value(i)))
	case *array.Uint64:
		return frame.Number(float64(a.Value(i)))
	case *array.Uint32:
		return frame.Number(float64(a.Value(i)))
	case *array.Uint16:
		return frame.Number(float64(a.Value(i)))
	case *array.Uint8:
		return frame.Number(float64(a.Value(i)))
	case *array.Boolean:
		if a.Value(i) {
			return frame.Number(1)
		}
		return frame.Number(0)
	case *array.String:
		return frame.Parse(a.Value(i))
	case *array.LargeString:
		return frame.Parse(a.Value(i))
	default:
		// dictionaries, decimals and the rest render through their string form
		return frame.Parse(arr.ValueStr(i))
	}
}
