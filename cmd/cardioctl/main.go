// Command cardioctl runs the cardiocare questionnaire, classifiers and
// prediction intake from a terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
