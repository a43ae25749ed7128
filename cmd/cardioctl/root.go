package main

import (
	"fmt"

	"github.com/okian/cardiocare/pkg/logger"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardioctl",
		Short:         "Cardiovascular health checks from the terminal",
		Long:          "cardioctl scores the heart-health questionnaire, classifies readings and requests risk predictions.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Logs go to stderr so stdout stays readable.
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return err
			}
			level, _ := cmd.Flags().GetString("log-level")
			return logger.SetLevelString(level)
		},
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newQuizCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cardioctl", version)
		},
	})
	return root
}
