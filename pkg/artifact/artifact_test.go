package artifact

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loadDir(t *testing.T, dir string) (*Bundle, error) {
	t.Helper()
	return Open(testutil.TestContext(t), StoreConfig{Path: dir})
}

func TestLoadLocal(t *testing.T) {
	dir := testutil.WriteFixture(t)
	fx := testutil.NewFixture()

	b, err := loadDir(t, dir)
	require.NoError(t, err)

	if diff := cmp.Diff(fx.FullFeatures, b.FullFeatures); diff != "" {
		t.Errorf("full features mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fx.TopFeatures, b.TopFeatures); diff != "" {
		t.Errorf("top features mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, fx.Model.Coef, b.Model.Coef)
	assert.Equal(t, fx.Model.Intercept, b.Model.Intercept)
	assert.Equal(t, fx.Scaler.FeatureNames, b.Scaler.FeatureNames)
	assert.Equal(t, 4.0, b.OrdinalMaps["BsmtQual"]["Gd"])
	assert.Equal(t, dir, b.Source)
	assert.Equal(t, testutil.ModelFile, b.Files["model"])
}

func TestLoadCompressedMatchesPlain(t *testing.T) {
	plain, err := loadDir(t, testutil.WriteFixture(t))
	require.NoError(t, err)

	for _, alg := range []compression.Algorithm{compression.Gzip, compression.Zstd, compression.LZ4, compression.S2, compression.Snappy} {
		t.Run(string(alg), func(t *testing.T) {
			dir := t.TempDir()
			testutil.NewFixture().Write(t, dir, alg)

			b, err := loadDir(t, dir)
			require.NoError(t, err)
			assert.Equal(t, plain.Model, b.Model)
			assert.Equal(t, plain.Scaler, b.Scaler)
			assert.Equal(t, plain.OrdinalMaps, b.OrdinalMaps)
			assert.Equal(t, plain.FullFeatures, b.FullFeatures)
			assert.Equal(t, testutil.ScalerFile+compression.Extension(alg), b.Files["scaler"])
		})
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	for _, name := range []string{testutil.ModelFile, testutil.ScalerFile, testutil.OrdinalFile, testutil.FullFeaturesFile, testutil.TopFeaturesFile} {
		t.Run(name, func(t *testing.T) {
			dir := testutil.WriteFixture(t)
			require.NoError(t, os.Remove(filepath.Join(dir, name)))

			b, err := loadDir(t, dir)
			assert.Nil(t, b)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeArtifact))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := loadDir(t, filepath.Join(t.TempDir(), "Deployment_Artifacts"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArtifact))
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := testutil.WriteFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, testutil.ScalerFile), []byte("{not json"), 0o600))

	_, err := loadDir(t, dir)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArtifact))
}

func TestLoadInconsistentModel(t *testing.T) {
	dir := t.TempDir()
	fx := testutil.NewFixture()
	fx.Model.Coef = fx.Model.Coef[:3]
	fx.Write(t, dir, compression.None)

	_, err := loadDir(t, dir)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArtifact))
}

func TestManifestOverridesNames(t *testing.T) {
	dir := testutil.WriteFixture(t)
	require.NoError(t, os.Rename(filepath.Join(dir, testutil.ModelFile), filepath.Join(dir, "ridge_v3.json")))
	t.Setenv("MODEL_TAG", "v3")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(
		"version: \"2024-06\"\nfiles:\n  model: ridge_${MODEL_TAG}.json\n"), 0o600))

	b, err := loadDir(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "2024-06", b.Version)
	assert.Equal(t, "ridge_v3.json", b.Files["model"])
	assert.Equal(t, testutil.ScalerFile, b.Files["scaler"])
}

func TestSplitURL(t *testing.T) {
	tests := []struct {
		in                     string
		scheme, bucket, prefix string
	}{
		{"Deployment_Artifacts", "", "", "Deployment_Artifacts"},
		{"s3://models/ames/v3/", "s3", "models", "ames/v3"},
		{"gs://models", "gs", "models", ""},
		{"S3://b/p", "s3", "b", "p"},
	}
	for _, tt := range tests {
		scheme, bucket, prefix := splitURL(tt.in)
		assert.Equal(t, tt.scheme, scheme, tt.in)
		assert.Equal(t, tt.bucket, bucket, tt.in)
		assert.Equal(t, tt.prefix, prefix, tt.in)
	}

	_, err := OpenStore(context.Background(), StoreConfig{Path: "ftp://host/x"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	dir := testutil.WriteFixture(t)
	fake := &fakeS3{objects: map[string][]byte{}}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		fake.objects["models/ames/"+e.Name()] = data
	}

	store := NewS3StoreWithClient(fake, "models", "ames")
	names, _, err := ResolveNames(testutil.TestContext(t), store)
	require.NoError(t, err)
	assert.Equal(t, DefaultNames(), names)

	b, err := Load(testutil.TestContext(t), store, names)
	require.NoError(t, err)
	assert.Equal(t, "s3://models/ames", b.Source)
	assert.Len(t, b.FullFeatures, len(testutil.NewFixture().FullFeatures))

	_, err = store.Open(context.Background(), "absent.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderLoadsOnce(t *testing.T) {
	dir := testutil.WriteFixture(t)
	var calls int32
	p := NewProvider(func(ctx context.Context) (*Bundle, error) {
		atomic.AddInt32(&calls, 1)
		return Open(ctx, StoreConfig{Path: dir})
	}, time.Minute, testutil.TestLogger(t))

	loaded, _ := p.Loaded()
	assert.False(t, loaded)

	var wg sync.WaitGroup
	bundles := make([]*Bundle, 8)
	for i := range bundles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := p.Get(context.Background())
			assert.NoError(t, err)
			bundles[i] = b
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, b := range bundles {
		assert.Same(t, bundles[0], b)
	}
	loaded, err := p.Loaded()
	assert.True(t, loaded)
	assert.NoError(t, err)
}

func TestProviderRepeatsFailure(t *testing.T) {
	p := NewStoreProvider(StoreConfig{Path: filepath.Join(t.TempDir(), "missing")}, 0, nil)

	_, first := p.Get(context.Background())
	require.Error(t, first)
	assert.True(t, errors.IsType(first, errors.ErrorTypeArtifact))

	b, second := p.Get(context.Background())
	assert.Nil(t, b)
	assert.Same(t, first, second)

	loaded, err := p.Loaded()
	assert.False(t, loaded)
	assert.Same(t, first, err)
}

func TestProviderIgnoresCallerCancellation(t *testing.T) {
	dir := testutil.WriteFixture(t)
	p := NewStoreProvider(StoreConfig{Path: dir}, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := p.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, b)
}
