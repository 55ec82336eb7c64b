package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spboyer/lossgrid/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"regular error", errors.New("disk full"), ExitError},
		{"invalid input", models.NewInvalidInput("n", "must be positive"), ExitInvalidInput},
		{"wrapped invalid input", fmt.Errorf("render: %w", models.NewInvalidInput("columns", "x")), ExitInvalidInput},
		{"empty source", &models.EmptySourceError{}, ExitInvalidInput},
		{"degenerate image", &models.DegenerateImageError{SampleID: "a"}, ExitInvalidInput},
		{"joined", errors.Join(errors.New("context"), &models.EmptySourceError{Batches: 2}), ExitInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
