package formats

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
)

const sample = "Id,GrLivArea,BsmtQual,Notes\n" +
	"1,1500.0,Gd,\"corner, lot\"\n" +
	"2,2100,NA,\n"

func TestReadCSV(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"Id", "GrLivArea", "BsmtQual", "Notes"}, f.Columns())
	assert.Equal(t, 1500.0, f.At("GrLivArea", 0).Num)
	assert.Equal(t, frame.KindCategory, f.At("BsmtQual", 0).Kind)
	assert.True(t, f.At("BsmtQual", 1).IsMissing())
	assert.Equal(t, "corner, lot", f.At("Notes", 0).Text())
}

func TestReadCSVStripsByteOrderMark(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("\ufeffGrLivArea\n1200\n"))
	require.NoError(t, err)
	assert.True(t, f.Has("GrLivArea"))
}

func TestReadCSVMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"header only":      "GrLivArea,OverallQual\n",
		"ragged row":       "GrLivArea,OverallQual\n1500\n",
		"duplicate header": "GrLivArea,GrLivArea\n1,2\n",
		"bare quote":       "GrLivArea\n\"15\"00\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(in))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput), err.Error())
		})
	}
}

func TestWriteCSVKeepsInputText(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f, []float64{181500.25, 250000}, "Predicted_SalePrice"))

	want := "Id,GrLivArea,BsmtQual,Notes,Predicted_SalePrice\n" +
		"1,1500.0,Gd,\"corner, lot\",181500.25\n" +
		"2,2100,NA,,250000\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	// the input frame is untouched
	assert.False(t, f.Has("Predicted_SalePrice"))
}

func TestWriteCSVReplacesExistingColumn(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("Predicted_SalePrice,GrLivArea\nold,1500\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f, []float64{12}, "Predicted_SalePrice"))
	assert.Equal(t, "Predicted_SalePrice,GrLivArea\n12,1500\n", buf.String())
}

func TestWriteCSVRowCountMismatch(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)
	err = WriteCSV(&bytes.Buffer{}, f, []float64{1}, "Predicted_SalePrice")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
}

func TestEncodeCompressed(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)
	prices := []float64{1, 2}

	var plain bytes.Buffer
	require.NoError(t, Encode(&plain, f, prices, "Predicted_SalePrice", compression.None))

	for _, alg := range []compression.Algorithm{compression.Gzip, compression.Zstd, compression.LZ4, compression.Snappy, compression.S2} {
		t.Run(string(alg), func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Encode(&out, f, prices, "Predicted_SalePrice", alg))

			c, err := compression.NewCompressor(&compression.Config{Algorithm: alg})
			require.NoError(t, err)
			got, err := c.Decompress(out.Bytes())
			require.NoError(t, err)
			assert.Equal(t, plain.String(), string(got))
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "houses.csv")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o600))

	f, err := ReadFile(context.Background(), in)
	require.NoError(t, err)

	path, err := WriteFile(filepath.Join(dir, "out.csv"), f, []float64{3, 4}, "Predicted_SalePrice", compression.Zstd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv.zst"), path)

	back, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, append(f.Columns(), "Predicted_SalePrice"), back.Columns())
	assert.Equal(t, 4.0, back.At("Predicted_SalePrice", 1).Num)
	assert.Equal(t, "1500.0", back.At("GrLivArea", 0).Text())
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func writeParquet(t *testing.T) []byte {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "GrLivArea", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "OverallQual", Type: arrow.PrimitiveTypes.Int64},
		{Name: "BsmtQual", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).AppendValues([]float64{1500, 0}, []bool{true, false})
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{7, 5}, nil)
	sb := b.Field(2).(*array.StringBuilder)
	sb.Append("Gd")
	sb.Append("3")

	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 1024, props, pqarrow.DefaultWriterProps()))
	return buf.Bytes()
}

func TestReadParquet(t *testing.T) {
	f, err := Read(context.Background(), bytes.NewReader(writeParquet(t)), Parquet)
	require.NoError(t, err)

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"GrLivArea", "OverallQual", "BsmtQual"}, f.Columns())
	assert.Equal(t, 1500.0, f.At("GrLivArea", 0).Num)
	assert.True(t, f.At("GrLivArea", 1).IsMissing())
	assert.Equal(t, 5.0, f.At("OverallQual", 1).Num)
	assert.Equal(t, "Gd", f.At("BsmtQual", 0).Str)
	assert.Equal(t, 3.0, f.At("BsmtQual", 1).Num)
}

func TestReadParquetMalformed(t *testing.T) {
	_, err := ReadParquet(context.Background(), strings.NewReader("not parquet"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"houses.csv":         CSV,
		"houses.CSV.gz":      CSV,
		"houses.parquet":     Parquet,
		"houses.parquet.zst": Parquet,
		"houses.pq":          Parquet,
		"houses":             CSV,
	}
	for name, want := range tests {
		assert.Equal(t, want, DetectFormat(name), name)
	}
}

func TestFromContentType(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"text/csv; charset=utf-8", CSV, false},
		{ContentTypeParquet, Parquet, false},
		{"application/json", "", true},
		{";;", "", true},
	}
	for _, tt := range tests {
		got, err := FromContentType(tt.in)
		if tt.wantErr {
			assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
