// Package compression provides the codecs used for compressed model artifacts
// and compressed batch downloads. Each algorithm is selected either by name or
// by the file-name suffix it is conventionally stored under.
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(&compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Default,
//	})
//
//	compressed, err := comp.Compress(data)
//	original, err := comp.Decompress(compressed)
//
// # Suffix detection
//
//	alg, base := compression.FromFileName("scaler.json.zst") // Zstd, "scaler.json"
package compression

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy framed compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

// extensions lists the file suffix for every algorithm, in probe order.
var extensions = []struct {
	alg Algorithm
	ext string
}{
	{Gzip, ".gz"},
	{Zstd, ".zst"},
	{LZ4, ".lz4"},
	{S2, ".s2"},
	{Snappy, ".snappy"},
}

// Extensions returns the known compressed-file suffixes in probe order.
func Extensions() []string {
	out := make([]string, len(extensions))
	for i, e := range extensions {
		out[i] = e.ext
	}
	return out
}

// Extension returns the conventional file suffix for an algorithm, or "" for None.
func Extension(alg Algorithm) string {
	for _, e := range extensions {
		if e.alg == alg {
			return e.ext
		}
	}
	return ""
}

// FromFileName detects the algorithm from a file name suffix and returns it
// together with the name stripped of that suffix. Unknown suffixes yield None.
func FromFileName(name string) (Algorithm, string) {
	for _, e := range extensions {
		if strings.HasSuffix(name, e.ext) {
			return e.alg, strings.TrimSuffix(name, e.ext)
		}
	}
	return None, name
}

// Parse converts a user-supplied algorithm name to an Algorithm.
func Parse(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", None:
		return None, nil
	case Gzip:
		return Gzip, nil
	case Snappy:
		return Snappy, nil
	case LZ4:
		return LZ4, nil
	case Zstd:
		return Zstd, nil
	case S2:
		return S2, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// Compressor compresses whole buffers or streams with one algorithm.
// Implementations are safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)

	// NewWriter wraps dst; the caller must Close it to flush the trailer.
	NewWriter(dst io.Writer) (io.WriteCloser, error)
	NewReader(src io.Reader) (io.ReadCloser, error)

	CompressStream(dst io.Writer, src io.Reader) error
	DecompressStream(dst io.Writer, src io.Reader) error

	Algorithm() Algorithm
	Level() Level
}

// Config selects the algorithm and level.
type Config struct {
	Algorithm Algorithm
	Level     Level
}

// DefaultConfig returns the configuration used for compressed downloads.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: Zstd,
		Level:     Default,
	}
}

// NewCompressor returns the codec for config.Algorithm. A nil config means
// DefaultConfig.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	c := &codec{alg: config.Algorithm, level: config.Level}

	switch config.Algorithm {
	case None, "":
		c.alg = None
		c.writer = func(dst io.Writer) (io.WriteCloser, error) { return nopWriteCloser{dst}, nil }
		c.reader = func(src io.Reader) (io.ReadCloser, error) { return io.NopCloser(src), nil }
	case Gzip:
		level := gzipLevel(config.Level)
		c.writer = func(dst io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(dst, level) }
		c.reader = func(src io.Reader) (io.ReadCloser, error) { return gzip.NewReader(src) }
	case Snappy:
		// framed format so buffers and streams are interchangeable
		c.writer = func(dst io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(dst), nil }
		c.reader = func(src io.Reader) (io.ReadCloser, error) { return io.NopCloser(snappy.NewReader(src)), nil }
	case LZ4:
		level := lz4Level(config.Level)
		c.writer = func(dst io.Writer) (io.WriteCloser, error) {
			w := lz4.NewWriter(dst)
			if err := w.Apply(lz4.CompressionLevelOption(level)); err != nil {
				return nil, err
			}
			return w, nil
		}
		c.reader = func(src io.Reader) (io.ReadCloser, error) { return io.NopCloser(lz4.NewReader(src)), nil }
	case Zstd:
		level := zstdLevel(config.Level)
		c.writer = func(dst io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(dst, zstd.WithEncoderLevel(level))
		}
		c.reader = func(src io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		}
	case S2:
		c.writer = func(dst io.Writer) (io.WriteCloser, error) { return s2.NewWriter(dst), nil }
		c.reader = func(src io.Reader) (io.ReadCloser, error) { return io.NopCloser(s2.NewReader(src)), nil }
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
	return c, nil
}

type codec struct {
	alg    Algorithm
	level  Level
	writer func(io.Writer) (io.WriteCloser, error)
	reader func(io.Reader) (io.ReadCloser, error)
}

func (c *codec) Algorithm() Algorithm { return c.alg }

func (c *codec) Level() Level { return c.level }

func (c *codec) NewWriter(dst io.Writer) (io.WriteCloser, error) { return c.writer(dst) }

func (c *codec) NewReader(src io.Reader) (io.ReadCloser, error) { return c.reader(src) }

func (c *codec) Compress(data []byte) ([]byte, error) {
	if c.alg == None {
		return data, nil
	}
	var buf bytes.Buffer
	if err := c.CompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *codec) Decompress(data []byte) ([]byte, error) {
	if c.alg == None {
		return data, nil
	}
	var buf bytes.Buffer
	if err := c.DecompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *codec) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := c.writer(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (c *codec) DecompressStream(dst io.Writer, src io.Reader) error {
	r, err := c.reader(src)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(dst, r) //nolint:gosec // G110: inputs come from the operator or the caller's own upload
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func gzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func lz4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func zstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
