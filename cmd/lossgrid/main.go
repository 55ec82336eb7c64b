package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spboyer/lossgrid/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0
	ExitError        = 1 // I/O, predictor or other runtime error
	ExitInvalidInput = 2 // bad arguments, empty data or undrawable samples
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		invalid    *models.InvalidInputError
		empty      *models.EmptySourceError
		degenerate *models.DegenerateImageError
	)
	if errors.As(err, &invalid) || errors.As(err, &empty) || errors.As(err, &degenerate) {
		return ExitInvalidInput
	}
	return ExitError
}
