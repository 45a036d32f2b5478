package formats

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
)

const utf8BOM = "\ufeff"

// ReadCSV reads a table with a header row. Cells keep their original text.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrorTypeMalformedInput, "input has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "read CSV header")
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "read CSV rows")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrorTypeMalformedInput, "input has no rows")
	}

	return frame.FromRecords(header, records)
}

// WriteCSV writes f followed by a prediction column. If f already has a
// column with that name it is replaced in place.
func WriteCSV(w io.Writer, f *frame.Frame, prices []float64, column string) error {
	if len(prices) != f.Len() {
		return errors.Newf(errors.ErrorTypeInternal,
			"%d predictions for %d rows", len(prices), f.Len())
	}

	out := f.Clone()
	values := make([]frame.Value, len(prices))
	for i, p := range prices {
		values[i] = frame.Value{Kind: frame.KindNumber, Num: p, Raw: FormatPrice(p)}
	}
	if err := out.Set(column, values); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(out.Records()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "write CSV")
	}
	return nil
}

// FormatPrice renders a price with the fewest digits that round-trip
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
