package compression

import (
	"bytes"
	"testing"
)

func TestRoundTripAllAlgorithms(t *testing.T) {
	original := []byte(`{"feature_names_in":["OverallQual","GrLivArea","GarageCars"],` +
		`"center":[6.1,7.27,1.77],"scale":[1.38,0.33,0.75]}` +
		` repeated content content content to give the encoders something to find`)

	for _, alg := range []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2} {
		t.Run(string(alg), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			if err != nil {
				t.Fatalf("Failed to create %s compressor: %v", alg, err)
			}

			compressed, err := comp.Compress(original)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}

			decompressed, err := comp.Decompress(compressed)
			if err != nil {
				t.Fatalf("Failed to decompress: %v", err)
			}
			if !bytes.Equal(original, decompressed) {
				t.Errorf("Decompressed data doesn't match original.\nOriginal: %s\nDecompressed: %s",
					string(original), string(decompressed))
			}

			var streamed bytes.Buffer
			if err := comp.CompressStream(&streamed, bytes.NewReader(original)); err != nil {
				t.Fatalf("Failed to compress stream: %v", err)
			}
			var restored bytes.Buffer
			if err := comp.DecompressStream(&restored, &streamed); err != nil {
				t.Fatalf("Failed to decompress stream: %v", err)
			}
			if !bytes.Equal(original, restored.Bytes()) {
				t.Errorf("Stream round trip mismatch for %s", alg)
			}
		})
	}
}

func TestFromFileName(t *testing.T) {
	cases := map[string]struct {
		alg  Algorithm
		base string
	}{
		"scaler.json":          {None, "scaler.json"},
		"scaler.json.gz":       {Gzip, "scaler.json"},
		"ridge_model.json.zst": {Zstd, "ridge_model.json"},
		"final.json.lz4":       {LZ4, "final.json"},
		"ordinal.json.s2":      {S2, "ordinal.json"},
		"top_10.json.snappy":   {Snappy, "top_10.json"},
		"ames_predictions.csv": {None, "ames_predictions.csv"},
	}

	for name, want := range cases {
		alg, base := FromFileName(name)
		if alg != want.alg || base != want.base {
			t.Errorf("FromFileName(%q) = (%s, %q), want (%s, %q)", name, alg, base, want.alg, want.base)
		}
	}
}

func TestParse(t *testing.T) {
	if alg, err := Parse(" ZSTD "); err != nil || alg != Zstd {
		t.Fatalf("Parse(zstd) = %s, %v", alg, err)
	}
	if alg, err := Parse(""); err != nil || alg != None {
		t.Fatalf("Parse(\"\") = %s, %v", alg, err)
	}
	if _, err := Parse("brotli"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
	if Extension(Zstd) != ".zst" || Extension(None) != "" {
		t.Fatal("unexpected extension mapping")
	}
}
