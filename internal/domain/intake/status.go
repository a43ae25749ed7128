package intake

// Status is the single tagged state of a session. The concrete types are
// Editing, Submitting, Succeeded and Failed; no other type implements it.
type Status interface {
	// Name is a stable lowercase identifier for the variant.
	Name() string
	isStatus()
}

// Editing is the form being filled in. Err is set when the last submit
// failed form-level validation.
type Editing struct {
	Err *ValidationError
}

// Submitting means a prediction request is in flight for Attempt.
type Submitting struct {
	Attempt uint64
}

// Succeeded holds the prediction. Only Reset leaves this state.
type Succeeded struct {
	Prediction Prediction
}

// Failed holds the normalized reason of the last attempt. The form stays
// editable and may be resubmitted.
type Failed struct {
	Kind   ErrorKind
	Reason string
}

func (Editing) Name() string    { return "editing" }
func (Submitting) Name() string { return "submitting" }
func (Succeeded) Name() string  { return "succeeded" }
func (Failed) Name() string     { return "failed" }

func (Editing) isStatus()    {}
func (Submitting) isStatus() {}
func (Succeeded) isStatus()  {}
func (Failed) isStatus()     {}

// Prediction is the prediction service's answer.
type Prediction struct {
	Flag    int    `json:"prediction"`
	Message string `json:"message"`
}

// Positive reports whether elevated cardiovascular risk was predicted.
func (p Prediction) Positive() bool { return p.Flag == 1 }

// Recommendations returns the follow-up advice shown with a prediction.
func Recommendations(positive bool) []string {
	if positive {
		return []string{
			"Consult with a healthcare provider immediately",
			"Discuss medication options with your doctor",
			"Start a supervised exercise program",
			"Follow a strict heart-healthy diet",
		}
	}
	return []string{
		"Maintain your current healthy lifestyle",
		"Continue regular physical activity",
		"Schedule regular check-ups",
		"Maintain a balanced, heart-healthy diet",
	}
}
