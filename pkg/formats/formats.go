// Package formats reads batch input tables and writes scored output.
//
// Input may be CSV or Parquet, optionally compressed with any algorithm
// pkg/compression knows. Output is always CSV: the input table unchanged plus
// one appended prediction column.
package formats

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
)

// Format is a batch table encoding
type Format string

const (
	// CSV is comma separated text with a header row
	CSV Format = "csv"
	// Parquet is Apache Parquet
	Parquet Format = "parquet"
)

// Content types accepted by the batch endpoint
const (
	ContentTypeCSV     = "text/csv"
	ContentTypeParquet = "application/vnd.apache.parquet"
)

// DetectFormat picks a format from a file name. Compression suffixes are
// ignored; anything that is not Parquet is read as CSV.
func DetectFormat(name string) Format {
	_, base := compression.FromFileName(name)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".parquet", ".pq":
		return Parquet
	default:
		return CSV
	}
}

// FromContentType maps a request content type to a format. An empty type is CSV.
func FromContentType(contentType string) (Format, error) {
	if strings.TrimSpace(contentType) == "" {
		return CSV, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeMalformedInput, "invalid content type")
	}
	switch mt {
	case ContentTypeCSV, "application/csv", "text/plain":
		return CSV, nil
	case ContentTypeParquet, "application/x-parquet", "application/octet-stream":
		return Parquet, nil
	default:
		return "", errors.Newf(errors.ErrorTypeMalformedInput, "unsupported content type %q", mt)
	}
}

// Read decodes a table in the given format
func Read(ctx context.Context, r io.Reader, format Format) (*frame.Frame, error) {
	start := time.Now()
	defer func() { metrics.ObserveStage(metrics.StageDecode, time.Since(start)) }()

	switch format {
	case CSV, "":
		return ReadCSV(r)
	case Parquet:
		return ReadParquet(ctx, r)
	default:
		return nil, errors.Newf(errors.ErrorTypeMalformedInput, "unsupported format %q", format)
	}
}

// ReadFile reads a batch table from disk. A compression suffix such as
// ".csv.zst" is decompressed while reading.
func ReadFile(ctx context.Context, path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "read batch input").
			WithDetail("path", path)
	}
	defer file.Close()

	alg, _ := compression.FromFileName(path)
	c, err := compression.NewCompressor(&compression.Config{Algorithm: alg})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "create decompressor")
	}
	r, err := c.NewReader(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "decompress batch input").
			WithDetail("path", path)
	}
	defer r.Close()

	return Read(ctx, r, DetectFormat(path))
}

// Encode writes the scored table as CSV to w, compressed with alg
func Encode(w io.Writer, f *frame.Frame, prices []float64, column string, alg compression.Algorithm) error {
	start := time.Now()
	defer func() { metrics.ObserveStage(metrics.StageEncode, time.Since(start)) }()

	c, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: compression.Default})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "output compression")
	}
	cw, err := c.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "compress output")
	}
	if err := WriteCSV(cw, f, prices, column); err != nil {
		_ = cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "write output")
	}
	return nil
}

// WriteFile writes the scored table to path, adding the compression suffix
// when alg is set. It returns the path written.
func WriteFile(path string, f *frame.Frame, prices []float64, column string, alg compression.Algorithm) (string, error) {
	if ext := compression.Extension(alg); ext != "" && !strings.HasSuffix(path, ext) {
		path += ext
	}

	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "create output").WithDetail("path", path)
	}
	if err := Encode(out, f, prices, column, alg); err != nil {
		_ = out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "close output").WithDetail("path", path)
	}
	return path, nil
}
