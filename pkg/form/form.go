// Package form defines the ten features a person enters to price a single
// property, with their defaults and allowed ranges.
package form

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
)

// Widget is how a field is rendered
type Widget string

const (
	// Slider takes whole numbers only
	Slider Widget = "slider"
	// NumberInput takes any number in range
	NumberInput Widget = "number"
)

// Field describes one exposed feature
type Field struct {
	Name    string  `json:"name" yaml:"name"`
	Label   string  `json:"label" yaml:"label"`
	Default float64 `json:"default" yaml:"default"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Widget  Widget  `json:"widget" yaml:"widget"`
}

var fields = []Field{
	{"OverallQual", "Overall Material and Finish Quality (1-10)", 7, 1, 10, Slider},
	{"GrLivArea", "Above Ground Living Area (Sq Ft)", 1500, 500, 4000, NumberInput},
	{"GarageCars", "Garage Capacity (0-4 Cars)", 2, 0, 4, Slider},
	{"1stFlrSF", "First Floor Area (Sq Ft)", 1000, 500, 3000, NumberInput},
	{"YearBuilt", "Year Built", 2000, 1900, 2020, Slider},
	{"ExterQual", "Exterior Material Quality (1-5)", 4, 1, 5, Slider},
	{"TotalBsmtSF", "Total Basement Area (Sq Ft)", 1000, 0, 3000, NumberInput},
	{"KitchenQual", "Kitchen Quality (1-5)", 4, 1, 5, Slider},
	{"GarageArea", "Garage Area (Sq Ft)", 480, 0, 1200, NumberInput},
	{"FullBath", "Full Bathrooms Above Grade", 2, 0, 4, Slider},
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the field definitions in display order
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the field with the given name
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// Defaults returns a fresh input set with every field at its default
func Defaults() map[string]float64 {
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Default
	}
	return out
}

// Check reports whether v is acceptable for the field
func (f Field) Check(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return errors.Newf(errors.ErrorTypeValidation, "%s must be a finite number", f.Name).
			WithDetail("field", f.Name)
	case v < f.Min || v > f.Max:
		return errors.Newf(errors.ErrorTypeValidation, "%s must be between %s and %s, got %s",
			f.Name, format(f.Min), format(f.Max), format(v)).
			WithDetail("field", f.Name)
	case f.Widget == Slider && v != math.Trunc(v):
		return errors.Newf(errors.ErrorTypeValidation, "%s must be a whole number, got %s", f.Name, format(v)).
			WithDetail("field", f.Name)
	}
	return nil
}

// Validate checks every supplied value. Unknown names are rejected; omitted
// fields are fine. Errors are reported for fields in sorted name order.
func Validate(inputs map[string]float64) error {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return errors.Newf(errors.ErrorTypeValidation, "unknown field %q", name).
				WithDetail("field", name)
		}
		if err := f.Check(inputs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Resolve validates inputs and fills omitted fields with defaults
func Resolve(inputs map[string]float64) (map[string]float64, error) {
	if err := Validate(inputs); err != nil {
		return nil, err
	}
	out := Defaults()
	for k, v := range inputs {
		out[k] = v
	}
	return out, nil
}

// BuildRow returns the single-property row for inputs. Model columns the form
// does not collect are left out and completed as 0 by preprocessing.
func BuildRow(inputs map[string]float64) frame.Row {
	row := make(frame.Row, len(inputs))
	for k, v := range inputs {
		row[k] = frame.Number(v)
	}
	return row
}

func format(v float64) string {
	return fmt.Sprintf("%g", v)
}

// Session is the caller-held record of the last single prediction
type Session struct {
	LastInputs map[string]float64 `json:"last_inputs"`
	LastPrice  float64            `json:"last_price"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Record stores a prediction, copying inputs
func (s *Session) Record(inputs map[string]float64, price float64) {
	s.LastInputs = make(map[string]float64, len(inputs))
	for k, v := range inputs {
		s.LastInputs[k] = v
	}
	s.LastPrice = price
	s.UpdatedAt = time.Now()
}

// Last returns the last prediction and whether there is one
func (s *Session) Last() (map[string]float64, float64, bool) {
	if s == nil || s.LastInputs == nil {
		return nil, 0, false
	}
	out := make(map[string]float64, len(s.LastInputs))
	for k, v := range s.LastInputs {
		out[k] = v
	}
	return out, s.LastPrice, true
}
