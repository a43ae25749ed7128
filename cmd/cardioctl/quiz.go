package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/cardiocare/internal/domain/scoring"
	"github.com/okian/cardiocare/pkg/metrics"
	"github.com/spf13/cobra"
)

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take the six-question heart-health assessment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, _ := cmd.Flags().GetIntSlice("answers")
			engine := scoring.NewEngine()

			var (
				st  scoring.State
				err error
			)
			if len(answers) > 0 {
				st, err = answerAll(engine, answers)
			} else {
				st, err = askAll(engine, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
			}
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().IntSlice("answers", nil, "Choice numbers (1-based) for every question, e.g. 3,2,1,2,2,2")
	return cmd
}

func answerAll(engine *scoring.Engine, answers []int) (scoring.State, error) {
	if len(answers) != len(engine.Bank()) {
		return scoring.State{}, fmt.Errorf("expected %d answers, got %d", len(engine.Bank()), len(answers))
	}
	var st scoring.State
	for i, a := range answers {
		var err error
		st, err = engine.Answer(a - 1)
		if err != nil {
			return st, fmt.Errorf("answer %d: %w", i+1, err)
		}
	}
	return st, nil
}

func askAll(engine *scoring.Engine, p *prompter) (scoring.State, error) {
	st := engine.State()
	for !st.Complete {
		q := st.Current
		fmt.Fprintf(p.out, "\n[%d/%d] %s\n", st.Index+1, st.Total, q.Prompt)
		for i, c := range q.Choices {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, c.Label)
		}
		raw, err := p.ask("> ")
		if err != nil {
			return st, err
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(p.out, "Please enter a number.")
			continue
		}
		next, err := engine.Answer(n - 1)
		if err != nil {
			fmt.Fprintf(p.out, "Please choose 1-%d.\n", len(q.Choices))
			continue
		}
		st = next
	}
	return st, nil
}

func printResult(w io.Writer, st scoring.State) {
	r := st.Result
	metrics.RecordAssessmentCompleted(string(r.Tier))
	fmt.Fprintf(w, "\nScore: %d/%d\n", r.Score, r.MaxScore)
	fmt.Fprintf(w, "Risk:  %s\n", r.Tier)
	fmt.Fprintf(w, "%s\n\n", r.Advice)
	fmt.Fprintln(w, "Recommendations:")
	for _, rec := range scoring.Recommendations() {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
	fmt.Fprintln(w, strings.Repeat("─", 40))
}
