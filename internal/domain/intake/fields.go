package intake

// Field names a form input. Values match the prediction service's wire keys.
type Field string

const (
	FieldAge         Field = "age"
	FieldGender      Field = "gender"
	FieldHeight      Field = "height"
	FieldWeight      Field = "weight"
	FieldSystolic    Field = "ap_hi"
	FieldDiastolic   Field = "ap_lo"
	FieldCholesterol Field = "cholesterol"
	FieldGlucose     Field = "gluc"
	FieldSmoke       Field = "smoke"
	FieldAlcohol     Field = "alco"
	FieldActive      Field = "active"
	FieldCountry     Field = "country"
	FieldOccupation  Field = "occupation"
)

// Range is the accepted interval for a numeric field. Integer fields are
// codes or flags and reject fractional input.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Integer bool    `json:"integer"`
}

func (r Range) contains(v float64) bool { return v >= r.Min && v <= r.Max }

var ranges = map[Field]Range{ //nolint:gochecknoglobals // fixed form constraints
	FieldAge:         {Min: 1, Max: 120},
	FieldGender:      {Min: 0, Max: 1, Integer: true},
	FieldHeight:      {Min: 100, Max: 250},
	FieldWeight:      {Min: 20, Max: 300},
	FieldSystolic:    {Min: 70, Max: 250},
	FieldDiastolic:   {Min: 40, Max: 150},
	FieldCholesterol: {Min: 1, Max: 3, Integer: true},
	FieldGlucose:     {Min: 1, Max: 3, Integer: true},
	FieldSmoke:       {Min: 0, Max: 1, Integer: true},
	FieldAlcohol:     {Min: 0, Max: 1, Integer: true},
	FieldActive:      {Min: 0, Max: 1, Integer: true},
}

// RangeOf returns the declared range of a numeric field.
func RangeOf(f Field) (Range, bool) {
	r, ok := ranges[f]
	return r, ok
}

// IsText reports whether f holds free text.
func IsText(f Field) bool {
	return f == FieldCountry || f == FieldOccupation
}

// Known reports whether f is a form field at all.
func Known(f Field) bool {
	_, numeric := ranges[f]
	return numeric || IsText(f)
}

// RequiredFields lists the fields that must be set before submission, in
// form order.
func RequiredFields() []Field {
	return []Field{
		FieldAge, FieldGender, FieldHeight, FieldWeight,
		FieldSystolic, FieldDiastolic, FieldCholesterol, FieldGlucose,
		FieldSmoke, FieldAlcohol, FieldActive,
	}
}

// Step is a page of the intake form.
type Step int

const (
	StepPersonal  Step = 1
	StepHealth    Step = 2
	StepLifestyle Step = 3
)

// FirstStep and LastStep bound navigation.
const (
	FirstStep = StepPersonal
	LastStep  = StepLifestyle
)

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepHealth:
		return "health"
	case StepLifestyle:
		return "lifestyle"
	default:
		return "unknown"
	}
}

// Fields returns the inputs shown on step s.
func (s Step) Fields() []Field {
	switch s {
	case StepPersonal:
		return []Field{FieldAge, FieldGender, FieldHeight, FieldWeight, FieldCountry, FieldOccupation}
	case StepHealth:
		return []Field{FieldSystolic, FieldDiastolic, FieldCholesterol, FieldGlucose}
	case StepLifestyle:
		return []Field{FieldSmoke, FieldAlcohol, FieldActive}
	default:
		return nil
	}
}
