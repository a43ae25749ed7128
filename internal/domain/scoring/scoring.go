// Package scoring implements the questionnaire-based cardiovascular risk
// assessment: a fixed question bank, a pure score-to-tier mapping, and a
// step-by-step engine that collects answers.
package scoring

import (
	"fmt"
	"maps"
)

// Tier is the risk band derived from a total score.
type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
)

// Tier upper bounds (inclusive).
const (
	lowMax      = 3
	moderateMax = 7
)

var advice = map[Tier]string{ //nolint:gochecknoglobals // fixed copy
	TierLow:      "Great job! Keep up the healthy lifestyle.",
	TierModerate: "Consider making some lifestyle improvements.",
	TierHigh:     "Please consult with a healthcare provider soon.",
}

// Answers maps question id to the selected choice weight.
type Answers map[string]int

// Total sums the selected weights. Order does not matter.
func (a Answers) Total() int {
	total := 0
	for _, w := range a {
		total += w
	}
	return total
}

// Result is the outcome of a completed assessment.
type Result struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Tier     Tier   `json:"tier"`
	Advice   string `json:"advice"`
}

// TierFor maps a total score to its risk tier.
func TierFor(score int) Tier {
	switch {
	case score <= lowMax:
		return TierLow
	case score <= moderateMax:
		return TierModerate
	default:
		return TierHigh
	}
}

// AdviceFor returns the advice sentence for a tier.
func AdviceFor(t Tier) string {
	return advice[t]
}

// Compute scores a complete answer set against the reference bank.
func Compute(answers Answers) Result {
	return DefaultBank().Compute(answers)
}

// Compute scores answers against b.
func (b Bank) Compute(answers Answers) Result {
	score := answers.Total()
	tier := TierFor(score)
	return Result{
		Score:    score,
		MaxScore: b.MaxScore(),
		Tier:     tier,
		Advice:   AdviceFor(tier),
	}
}

// Recommendations lists general guidance shown alongside every result.
func Recommendations() []string {
	return []string{
		"Aim for 150 minutes of moderate exercise weekly",
		"Follow a heart-healthy diet rich in fruits and vegetables",
		"If you smoke, consider quitting programs",
		"Take prescribed medications as directed",
		"Regular check-ups with your healthcare provider",
	}
}

// State is a snapshot of an Engine.
type State struct {
	// Index of the current question; equals Total once complete.
	Index    int       `json:"index"`
	Total    int       `json:"total"`
	Answers  Answers   `json:"answers"`
	Complete bool      `json:"complete"`
	Result   *Result   `json:"result,omitempty"`
	Current  *Question `json:"current,omitempty"`
}

// Progress reports how far through the questionnaire the state is, as the
// fraction shown next to the current question.
func (s State) Progress() float64 {
	if s.Total == 0 || s.Complete {
		return 1
	}
	return float64(s.Index+1) / float64(s.Total)
}

// Option configures an Engine.
type Option func(*Engine)

// WithBank replaces the reference bank. Empty banks are ignored.
func WithBank(b Bank) Option {
	return func(e *Engine) {
		if len(b) > 0 {
			e.bank = b
		}
	}
}

// Engine walks a user through the bank one question at a time.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	bank    Bank
	index   int
	answers Answers
	result  *Result
}

// NewEngine returns an engine positioned on the first question.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{bank: DefaultBank()}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Bank returns the engine's question bank.
func (e *Engine) Bank() Bank { return e.bank }

// Current returns the question awaiting an answer. ok is false once complete.
func (e *Engine) Current() (Question, bool) {
	if e.result != nil {
		return Question{}, false
	}
	return e.bank[e.index], true
}

// Answer records choice (an index into the current question's choices) and
// advances. Answering the last question scores the assessment in the same
// step. Invalid choices and answers after completion leave state untouched.
func (e *Engine) Answer(choice int) (State, error) {
	q, ok := e.Current()
	if !ok {
		return e.State(), ErrAssessmentComplete
	}
	if choice < 0 || choice >= len(q.Choices) {
		return e.State(), fmt.Errorf("%w: %d for question %q", ErrInvalidChoice, choice, q.ID)
	}

	e.answers[q.ID] = q.Choices[choice].Weight
	e.index++
	if e.index == len(e.bank) {
		r := e.bank.Compute(e.answers)
		e.result = &r
	}
	return e.State(), nil
}

// State returns a snapshot safe to hand to other goroutines.
func (e *Engine) State() State {
	s := State{
		Index:    e.index,
		Total:    len(e.bank),
		Answers:  maps.Clone(e.answers),
		Complete: e.result != nil,
	}
	if e.result != nil {
		r := *e.result
		s.Result = &r
	} else {
		q := e.bank[e.index]
		s.Current = &q
	}
	return s
}

// Reset discards all answers and returns to the first question. It is valid
// in any state and idempotent.
func (e *Engine) Reset() State {
	e.index = 0
	e.answers = Answers{}
	e.result = nil
	return e.State()
}
