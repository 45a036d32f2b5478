package predict

import (
	"context"
	"math"
	"strconv"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/artifact"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/form"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/preprocess"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/testutil"
)

func newPredictor(t *testing.T, fx *testutil.Fixture, opts ...Option) *Predictor {
	t.Helper()
	return newPredictorWith(t, fx, nil, opts...)
}

func newPredictorWith(t *testing.T, fx *testutil.Fixture, preOpts []preprocess.Option, opts ...Option) *Predictor {
	t.Helper()
	dir := t.TempDir()
	fx.Write(t, dir, compression.None)

	b, err := artifact.Open(testutil.TestContext(t), artifact.StoreConfig{Path: dir})
	require.NoError(t, err)
	pre, err := preprocess.New(b, append(preOpts, preprocess.WithLogger(testutil.TestLogger(t)))...)
	require.NoError(t, err)
	p, err := New(b, pre, append(opts, WithLogger(testutil.TestLogger(t)))...)
	require.NoError(t, err)
	return p
}

func exampleRow() frame.Row {
	row := frame.Row{}
	for k, v := range testutil.ExampleInputs() {
		row[k] = frame.Number(v)
	}
	return row
}

func TestEndToEndExample(t *testing.T) {
	p := newPredictor(t, testutil.NewFixture())

	first, err := p.Predict(context.Background(), frame.FromRows([]frame.Row{exampleRow()}))
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.GreaterOrEqual(t, first[0], 0.0)

	for i := 0; i < 5; i++ {
		again, err := p.PredictRow(context.Background(), exampleRow())
		require.NoError(t, err)
		assert.Equal(t, first[0], again)
	}
}

func TestPredictMatchesHandComputation(t *testing.T) {
	fx := testutil.NewFixture()
	p := newPredictor(t, fx)

	x, err := p.pre.Transform(context.Background(), frame.FromRows([]frame.Row{exampleRow()}))
	require.NoError(t, err)

	want := fx.Model.Intercept
	for j, c := range fx.Model.Coef {
		want += c * x.Row(0)[j]
	}

	got, err := p.PredictRow(context.Background(), exampleRow())
	require.NoError(t, err)
	assert.InDelta(t, math.Expm1(want), got, 1e-6)
}

func TestBatchMatchesRowByRow(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		t.Run(strconv.Itoa(workers), func(t *testing.T) {
			p := newPredictor(t, testutil.NewFixture(), WithWorkers(workers))

			rows := make([]frame.Row, 37)
			for i := range rows {
				r := exampleRow()
				r["GrLivArea"] = frame.Number(800 + float64(i)*75)
				r["OverallQual"] = frame.Number(float64(1 + i%10))
				if i%4 == 0 {
					r["BsmtQual"] = frame.Category("Ex")
				}
				if i%3 == 0 {
					r["LotArea"] = frame.Number(9000 + float64(i)*10)
				}
				rows[i] = r
			}

			batch, err := p.Predict(context.Background(), frame.FromRows(rows))
			require.NoError(t, err)
			require.Len(t, batch, len(rows))

			for i, r := range rows {
				single, err := p.PredictRow(context.Background(), r)
				require.NoError(t, err)
				assert.Equal(t, single, batch[i], "row %d", i)
			}
		})
	}
}

func TestHeterogeneousRowsMatchRowByRow(t *testing.T) {
	p := newPredictor(t, testutil.NewFixture())

	wide := exampleRow()
	wide["LotArea"] = frame.Number(9000)
	rows := []frame.Row{wide, exampleRow()}

	batch, err := p.Predict(context.Background(), frame.FromRows(rows))
	require.NoError(t, err)
	for i, r := range rows {
		single, err := p.PredictRow(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "row %d", i)
	}
}

func TestStrictModeSingleRecord(t *testing.T) {
	strict := newPredictorWith(t, testutil.NewFixture(), []preprocess.Option{preprocess.WithStrictCategories()})
	lenient := newPredictor(t, testutil.NewFixture())

	inputs, err := form.Resolve(nil)
	require.NoError(t, err)

	got, err := strict.PredictRow(context.Background(), form.BuildRow(inputs))
	require.NoError(t, err)
	want, err := lenient.PredictRow(context.Background(), form.BuildRow(inputs))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	before := promtest.ToFloat64(metrics.UnrecognizedCategories.WithLabelValues("BsmtQual"))
	_, err = lenient.PredictRow(context.Background(), form.BuildRow(inputs))
	require.NoError(t, err)
	assert.Equal(t, before, promtest.ToFloat64(metrics.UnrecognizedCategories.WithLabelValues("BsmtQual")))

	row := form.BuildRow(inputs)
	row["HeatingQC"] = frame.Category("Superb")
	_, err = strict.PredictRow(context.Background(), row)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnrecognizedCategory))
}

func TestModelColumnMismatchIsModelError(t *testing.T) {
	fx := testutil.NewFixture()
	fx.Model.FeatureNames[0], fx.Model.FeatureNames[1] = fx.Model.FeatureNames[1], fx.Model.FeatureNames[0]
	p := newPredictor(t, fx)

	_, err := p.PredictRow(context.Background(), exampleRow())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeModel))
}

func TestPreprocessErrorsPropagate(t *testing.T) {
	p := newPredictor(t, testutil.NewFixture())
	row := exampleRow()
	row["YearBuilt"] = frame.Category("unknown")

	_, err := p.PredictRow(context.Background(), row)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))
}

func TestPriceRange(t *testing.T) {
	r := PriceRange(200000)
	assert.InDelta(t, 180000, r.Low, 1e-9)
	assert.InDelta(t, 220000, r.High, 1e-9)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{100, 300, 200})
	assert.Equal(t, Summary{Count: 3, Mean: 200, Min: 100, Max: 300}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestNewRequiresBundle(t *testing.T) {
	_, err := New(nil, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArtifact))
}
