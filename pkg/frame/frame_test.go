package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		num  float64
		key  string
	}{
		{"1500", KindNumber, 1500, "1500"},
		{" 4.0 ", KindNumber, 4, "4"},
		{"-0.5", KindNumber, -0.5, "-0.5"},
		{"Gd", KindCategory, 0, "Gd"},
		{"NA", KindMissing, 0, ""},
		{"", KindMissing, 0, ""},
		{"nan", KindMissing, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := Parse(tt.raw)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.num, v.Num)
			assert.Equal(t, tt.key, v.Key())
			assert.Equal(t, tt.raw, v.Text())
		})
	}
}

func TestFromRowsUnionsColumns(t *testing.T) {
	f := FromRows([]Row{
		{"OverallQual": Number(7), "GrLivArea": Number(1500)},
		{"BsmtQual": Category("Gd"), "OverallQual": Number(5), "LotArea": Missing()},
	})

	require.Equal(t, 2, f.Len())
	if diff := cmp.Diff([]string{"GrLivArea", "OverallQual", "BsmtQual", "LotArea"}, f.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, f.At("GrLivArea", 1).IsAbsent())
	assert.True(t, f.At("BsmtQual", 0).IsAbsent())
	assert.True(t, f.At("LotArea", 0).IsAbsent())
	assert.True(t, f.At("LotArea", 1).IsMissing())
	assert.False(t, f.At("LotArea", 1).IsAbsent())
	assert.Equal(t, "Gd", f.At("BsmtQual", 1).Str)
}

func TestFromRecordsRejectsRaggedRows(t *testing.T) {
	_, err := FromRecords([]string{"Id", "GrLivArea"}, [][]string{{"1", "1500"}, {"2"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))

	_, err = FromRecords([]string{"Id", "Id"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))
}

func TestRecordsKeepsRawText(t *testing.T) {
	header := []string{"Id", "GrLivArea", "BsmtQual"}
	records := [][]string{{"1", "1500.0", "NA"}, {"2", " 900", "Gd"}}

	f, err := FromRecords(header, records)
	require.NoError(t, err)

	want := append([][]string{header}, records...)
	if diff := cmp.Diff(want, f.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := FromRows([]Row{{"GrLivArea": Number(1500)}})
	c := f.Clone()
	require.NoError(t, c.Set("GrLivArea", []Value{Number(7.3)}))
	require.NoError(t, c.Set("Extra", []Value{Number(1)}))

	assert.Equal(t, 1500.0, f.At("GrLivArea", 0).Num)
	assert.False(t, f.Has("Extra"))
	assert.Error(t, c.Set("Bad", []Value{Number(1), Number(2)}))
}
