package scoring

// Choice is one selectable answer and the weight it adds to the score.
type Choice struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Question is a single questionnaire item.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []Choice `json:"choices"`
}

// maxWeight returns the heaviest choice weight of q.
func (q Question) maxWeight() int {
	m := 0
	for _, c := range q.Choices {
		if c.Weight > m {
			m = c.Weight
		}
	}
	return m
}

// Bank is an ordered questionnaire.
type Bank []Question

// MaxScore is the highest total a complete answer set can reach.
func (b Bank) MaxScore() int {
	total := 0
	for _, q := range b {
		total += q.maxWeight()
	}
	return total
}

// Question ids of the reference bank.
const (
	QuestionAge           = "age"
	QuestionGender        = "gender"
	QuestionSmoking       = "smoking"
	QuestionExercise      = "exercise"
	QuestionDiet          = "diet"
	QuestionFamilyHistory = "family_history"
)

// DefaultBank returns the six-question cardiovascular risk questionnaire.
// A fresh slice is returned on every call.
func DefaultBank() Bank {
	return Bank{
		{
			ID:     QuestionAge,
			Prompt: "What is your age?",
			Choices: []Choice{
				{Label: "Under 35", Weight: 0},
				{Label: "35-44", Weight: 1},
				{Label: "45-54", Weight: 2},
				{Label: "55-64", Weight: 3},
				{Label: "65 or older", Weight: 4},
			},
		},
		{
			ID:     QuestionGender,
			Prompt: "What is your gender?",
			Choices: []Choice{
				{Label: "Female", Weight: 0},
				{Label: "Male", Weight: 1},
			},
		},
		{
			ID:     QuestionSmoking,
			Prompt: "Do you smoke or have you smoked in the past?",
			Choices: []Choice{
				{Label: "Never smoked", Weight: 0},
				{Label: "Former smoker", Weight: 1},
				{Label: "Current smoker", Weight: 3},
			},
		},
		{
			ID:     QuestionExercise,
			Prompt: "How often do you exercise?",
			Choices: []Choice{
				{Label: "Daily (30+ minutes)", Weight: 0},
				{Label: "3-5 times per week", Weight: 1},
				{Label: "1-2 times per week", Weight: 2},
				{Label: "Rarely or never", Weight: 3},
			},
		},
		{
			ID:     QuestionDiet,
			Prompt: "How would you describe your diet?",
			Choices: []Choice{
				{Label: "Very healthy (lots of fruits, vegetables)", Weight: 0},
				{Label: "Moderately healthy", Weight: 1},
				{Label: "Average", Weight: 2},
				{Label: "Poor (high in processed foods)", Weight: 3},
			},
		},
		{
			ID:     QuestionFamilyHistory,
			Prompt: "Do you have a family history of heart disease?",
			Choices: []Choice{
				{Label: "No family history", Weight: 0},
				{Label: "Grandparents had heart disease", Weight: 2},
				{Label: "Parents or siblings had heart disease", Weight: 3},
			},
		},
	}
}
