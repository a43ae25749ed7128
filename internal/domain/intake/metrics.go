package intake

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/okian/cardiocare/internal/domain/classify"
)

// Metrics holds the values entered so far. The zero value is an empty form.
// Numeric values are only ever stored when within their declared range.
type Metrics struct {
	numeric    map[Field]float64
	country    string
	occupation string
}

// Value returns a numeric field. ok is false when the field is empty.
func (m Metrics) Value(f Field) (float64, bool) {
	v, ok := m.numeric[f]
	return v, ok
}

// Int returns a numeric field truncated to an integer.
func (m Metrics) Int(f Field) (int, bool) {
	v, ok := m.numeric[f]
	return int(math.Trunc(v)), ok
}

// Country returns the free-text country.
func (m Metrics) Country() string { return m.country }

// Occupation returns the free-text occupation.
func (m Metrics) Occupation() string { return m.occupation }

// Set parses raw and stores it under f. An empty raw value clears the field.
// Out-of-range or malformed input is rejected with a *ValidationError and
// the previous value is kept.
func (m *Metrics) Set(f Field, raw string) error {
	raw = strings.TrimSpace(raw)
	switch f {
	case FieldCountry:
		m.country = raw
		return nil
	case FieldOccupation:
		m.occupation = raw
		return nil
	}

	r, ok := ranges[f]
	if !ok {
		return &ValidationError{Field: f, Reason: "unknown field"}
	}
	if raw == "" {
		delete(m.numeric, f)
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: f, Reason: "must be a number"}
	}
	if r.Integer && v != math.Trunc(v) {
		return &ValidationError{Field: f, Reason: "must be a whole number"}
	}
	if !r.contains(v) {
		return &ValidationError{
			Field:  f,
			Reason: "must be between " + formatNumber(r.Min) + " and " + formatNumber(r.Max),
		}
	}

	if m.numeric == nil {
		m.numeric = make(map[Field]float64, len(ranges))
	}
	m.numeric[f] = v
	return nil
}

// Missing lists the required fields that are still empty, in form order.
func (m Metrics) Missing() []Field {
	var out []Field
	for _, f := range RequiredFields() {
		if _, ok := m.numeric[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns an independent copy.
func (m Metrics) Clone() Metrics {
	c := m
	c.numeric = maps.Clone(m.numeric)
	return c
}

// MarshalJSON renders set fields keyed by their wire name.
func (m Metrics) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.numeric)+2)
	for f, v := range m.numeric {
		out[string(f)] = v
	}
	out[string(FieldCountry)] = m.country
	out[string(FieldOccupation)] = m.occupation
	return json.Marshal(out)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Derived holds values computed from the metrics for the result page.
type Derived struct {
	BMI           *float64           `json:"bmi,omitempty"`
	BMICategory   *classify.Category `json:"bmi_category,omitempty"`
	BloodPressure *classify.Category `json:"blood_pressure,omitempty"`
}

// Derive computes BMI and blood-pressure categories from whatever is set.
func (m Metrics) Derive() Derived {
	var d Derived
	w, wok := m.Value(FieldWeight)
	h, hok := m.Value(FieldHeight)
	if wok && hok {
		if bmi, ok := classify.BMI(w, h); ok {
			d.BMI = &bmi
			if cat, ok := classify.ClassifyBMI(bmi); ok {
				d.BMICategory = &cat
			}
		}
	}
	sys, sok := m.Int(FieldSystolic)
	dia, dok := m.Int(FieldDiastolic)
	if sok && dok {
		cat := classify.ClassifyBloodPressure(sys, dia)
		d.BloodPressure = &cat
	}
	return d
}
