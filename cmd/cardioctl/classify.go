package main

import (
	"errors"
	"fmt"

	"github.com/okian/cardiocare/internal/domain/classify"
	"github.com/okian/cardiocare/pkg/metrics"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify BMI, blood pressure or heart rate",
	}

	bmi := &cobra.Command{
		Use:   "bmi",
		Short: "Classify a body-mass index (from --bmi or --weight and --height)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, _ := cmd.Flags().GetFloat64("bmi")
			weight, _ := cmd.Flags().GetFloat64("weight")
			height, _ := cmd.Flags().GetFloat64("height")
			if value == 0 {
				v, ok := classify.BMI(weight, height)
				if !ok {
					return errors.New("pass --bmi or positive --weight and --height")
				}
				value = v
			}
			cat, ok := classify.ClassifyBMI(value)
			if !ok {
				return fmt.Errorf("invalid bmi %v", value)
			}
			metrics.RecordClassification("bmi", cat.Label)
			fmt.Fprintf(cmd.OutOrStdout(), "BMI %.1f: %s (%s)\n", value, cat.Label, cat.Severity)
			return nil
		},
	}
	bmi.Flags().Float64("bmi", 0, "Body-mass index")
	bmi.Flags().Float64("weight", 0, "Weight in kg")
	bmi.Flags().Float64("height", 0, "Height in cm")

	bp := &cobra.Command{
		Use:     "bp",
		Aliases: []string{"blood-pressure"},
		Short:   "Classify a blood pressure reading",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sys, _ := cmd.Flags().GetInt("systolic")
			dia, _ := cmd.Flags().GetInt("diastolic")
			if sys <= 0 || dia <= 0 {
				return errors.New("--systolic and --diastolic are required")
			}
			cat := classify.ClassifyBloodPressure(sys, dia)
			metrics.RecordClassification("blood-pressure", cat.Label)
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d mmHg: %s (%s)\n", sys, dia, cat.Label, cat.Severity)
			return nil
		},
	}
	bp.Flags().Int("systolic", 0, "Systolic pressure in mmHg")
	bp.Flags().Int("diastolic", 0, "Diastolic pressure in mmHg")

	hr := &cobra.Command{
		Use:     "hr",
		Aliases: []string{"heart-rate"},
		Short:   "Classify a resting heart rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bpm, _ := cmd.Flags().GetInt("bpm")
			if bpm <= 0 {
				return errors.New("--bpm is required")
			}
			cat := classify.ClassifyHeartRate(bpm)
			metrics.RecordClassification("heart-rate", cat.Label)
			fmt.Fprintf(cmd.OutOrStdout(), "%d bpm: %s (%s)\n", bpm, cat.Label, cat.Severity)
			return nil
		},
	}
	hr.Flags().Int("bpm", 0, "Beats per minute")

	cmd.AddCommand(bmi, bp, hr)
	return cmd
}
