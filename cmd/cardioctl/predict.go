package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/cardiocare/internal/adapters/predictor"
	"github.com/okian/cardiocare/internal/config"
	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/spf13/cobra"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fill in the intake form and request a risk prediction",
		Long: "predict walks the three intake steps, prompting for every empty field, " +
			"then sends the form to the prediction service. Values passed with --set skip their prompt.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if url, _ := cmd.Flags().GetString("url"); url != "" {
				cfg.PredictionURL = url
			}
			if country, _ := cmd.Flags().GetString("country"); country != "" {
				cfg.DefaultCountry = country
			}
			set, _ := cmd.Flags().GetStringToString("set")
			interactive, _ := cmd.Flags().GetBool("interactive")

			session := intake.New(intake.WithDefaultCountry(cfg.DefaultCountry))
			out := cmd.OutOrStdout()
			if err := applyValues(session, set); err != nil {
				return err
			}
			if interactive {
				if err := fillSteps(session, newPrompter(cmd.InOrStdin(), out)); err != nil {
					return err
				}
			}
			for session.State().Step != intake.LastStep {
				if _, err := session.Next(); err != nil {
					return err
				}
			}

			client := predictor.New(
				predictor.WithURL(cfg.PredictionURL),
				predictor.WithTimeout(cfg.PredictionTimeout()),
				predictor.WithDefaultCountry(cfg.DefaultCountry),
			)
			st, err := session.Run(ctx, client)
			var verr *intake.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("form incomplete: %w", verr)
			}
			printOutcome(out, st, session.Derived())
			return err
		},
	}
	cmd.Flags().String("url", "", "Prediction endpoint (overrides prediction_url)")
	cmd.Flags().String("country", "", "Country sent with the form (overrides default_country)")
	cmd.Flags().StringToString("set", nil, "Field values, e.g. --set age=54,gender=1,height=172")
	cmd.Flags().BoolP("interactive", "i", true, "Prompt for fields not given with --set")
	return cmd
}

func applyValues(s *intake.Session, values map[string]string) error {
	for name, raw := range values {
		f := intake.Field(name)
		if !intake.Known(f) {
			return fmt.Errorf("unknown field %q", name)
		}
		if _, err := s.Set(f, raw); err != nil {
			return err
		}
	}
	return nil
}

// fillSteps prompts for every empty field step by step. A rejected value is
// asked again; an empty line skips an optional field.
func fillSteps(s *intake.Session, p *prompter) error {
	for {
		st := s.State()
		fmt.Fprintf(p.out, "\nStep %d: %s\n", st.Step, st.Step)
		for _, f := range st.Step.Fields() {
			if err := askField(s, f, p); err != nil {
				return err
			}
		}
		if st.Step == intake.LastStep {
			return nil
		}
		if _, err := s.Next(); err != nil {
			return err
		}
	}
}

func askField(s *intake.Session, f intake.Field, p *prompter) error {
	m := s.State().Metrics
	if intake.IsText(f) {
		current := m.Occupation()
		if f == intake.FieldCountry {
			current = m.Country()
		}
		if current != "" {
			return nil
		}
		raw, err := p.ask(fmt.Sprintf("%s (optional): ", f))
		if err != nil {
			return err
		}
		_, err = s.Set(f, raw)
		return err
	}
	if _, ok := m.Value(f); ok {
		return nil
	}
	r, _ := intake.RangeOf(f)
	for {
		raw, err := p.ask(fmt.Sprintf("%s [%g-%g]: ", f, r.Min, r.Max))
		if err != nil {
			return err
		}
		if _, err := s.Set(f, raw); err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		if _, ok := s.State().Metrics.Value(f); ok {
			return nil
		}
		fmt.Fprintf(p.out, "%s is required\n", f)
	}
}

func printOutcome(w io.Writer, st intake.State, d intake.Derived) {
	fmt.Fprintln(w)
	if d.BMI != nil && d.BMICategory != nil {
		fmt.Fprintf(w, "BMI:            %.1f (%s)\n", *d.BMI, d.BMICategory.Label)
	}
	if d.BloodPressure != nil {
		fmt.Fprintf(w, "Blood pressure: %s\n", d.BloodPressure.Label)
	}

	switch status := st.Status.(type) {
	case intake.Succeeded:
		p := status.Prediction
		risk := "low"
		if p.Positive() {
			risk = "high"
		}
		fmt.Fprintf(w, "Prediction:     %s risk\n", risk)
		if p.Message != "" {
			fmt.Fprintf(w, "                %s\n", p.Message)
		}
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range intake.Recommendations(p.Positive()) {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	case intake.Failed:
		fmt.Fprintf(w, "Prediction failed (%s): %s\n", status.Kind, status.Reason)
	}
	fmt.Fprintln(w, strings.Repeat("─", 40))
}
