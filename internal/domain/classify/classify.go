// Package classify maps raw health readings to labelled categories.
//
// All functions are pure and safe for concurrent use.
package classify

import (
	"math"
)

// Severity orders categories from informational to dangerous. Presentation
// layers map it to colors; the core never does.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityGood
	SeverityCaution
	SeverityWarning
	SeverityDanger
)

var severityNames = [...]string{"info", "good", "caution", "warning", "danger"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText renders the severity by name in JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category labels.
const (
	LabelUnderweight = "Underweight"
	LabelNormal      = "Normal"
	LabelOverweight  = "Overweight"
	LabelObese       = "Obese"
	LabelElevated    = "Elevated"
	LabelStage1      = "Stage 1"
	LabelStage2      = "Stage 2"
	LabelLow         = "Low"
	LabelHigh        = "High"
)

// Category is a label plus its severity.
type Category struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

// BMI thresholds (kg/m²).
const (
	bmiUnderweight = 18.5
	bmiNormal      = 25
	bmiOverweight  = 30
)

// ClassifyBMI categorizes a body-mass index. ok is false when the value is
// not a positive finite number.
func ClassifyBMI(bmi float64) (Category, bool) {
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) || bmi <= 0 {
		return Category{}, false
	}
	switch {
	case bmi < bmiUnderweight:
		return Category{Label: LabelUnderweight, Severity: SeverityInfo}, true
	case bmi < bmiNormal:
		return Category{Label: LabelNormal, Severity: SeverityGood}, true
	case bmi < bmiOverweight:
		return Category{Label: LabelOverweight, Severity: SeverityCaution}, true
	default:
		return Category{Label: LabelObese, Severity: SeverityDanger}, true
	}
}

// ClassifyBloodPressure categorizes a systolic/diastolic pair in mmHg.
// Rules are evaluated in order and the first match wins, so Stage 1 only
// catches pairs that are neither Normal nor Elevated.
func ClassifyBloodPressure(systolic, diastolic int) Category {
	switch {
	case systolic < 120 && diastolic < 80:
		return Category{Label: LabelNormal, Severity: SeverityGood}
	case systolic < 130 && diastolic < 80:
		return Category{Label: LabelElevated, Severity: SeverityCaution}
	case systolic < 140 || diastolic < 90:
		return Category{Label: LabelStage1, Severity: SeverityWarning}
	default:
		return Category{Label: LabelStage2, Severity: SeverityDanger}
	}
}

// ClassifyHeartRate categorizes a resting heart rate in beats per minute.
func ClassifyHeartRate(bpm int) Category {
	switch {
	case bpm < 60:
		return Category{Label: LabelLow, Severity: SeverityInfo}
	case bpm <= 100:
		return Category{Label: LabelNormal, Severity: SeverityGood}
	default:
		return Category{Label: LabelHigh, Severity: SeverityDanger}
	}
}

// BMI computes weight / (height in meters)², rounded to one decimal.
// ok is false when either input is missing or non-positive.
func BMI(weightKg, heightCm float64) (float64, bool) {
	if !(weightKg > 0) || !(heightCm > 0) || math.IsInf(weightKg, 0) || math.IsInf(heightCm, 0) {
		return 0, false
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, true
}
