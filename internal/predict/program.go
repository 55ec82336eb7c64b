// Package predict provides predictor collaborators for the collector: an
// external program speaking JSON over stdin/stdout, and a table of
// precomputed scores.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spboyer/lossgrid/internal/models"
	"gorgonia.org/tensor"
)

// defaultProgramTimeoutSeconds bounds a single batch prediction when no timeout is set.
const defaultProgramTimeoutSeconds = 30

// ProgramArgs holds the arguments for creating a Program predictor.
type ProgramArgs struct {
	// Command is the program to execute for each batch.
	Command string `mapstructure:"command"`
	// Args are the arguments to pass to the program.
	Args []string `mapstructure:"args"`
	// Timeout is the maximum execution time per batch in seconds. Defaults to 30 if not set.
	Timeout int `mapstructure:"timeout"`
}

// ProgramRequest is written to the program's stdin.
type ProgramRequest struct {
	Shape  []int     `json:"shape"`  // batch, channels, height, width
	Inputs []float64 `json:"inputs"` // flattened in shape order
}

// ProgramResponse is read from the program's stdout.
type ProgramResponse struct {
	Scores [][]float64 `json:"scores"`
}

// Program runs an external model once per batch. The batch is passed as a
// ProgramRequest on stdin and one row of class scores per item is expected
// back as a ProgramResponse on stdout.
type Program struct {
	command string
	args    []string
	timeout time.Duration
}

// NewProgram creates a Program predictor.
func NewProgram(args ProgramArgs) (*Program, error) {
	if args.Command == "" {
		return nil, fmt.Errorf("program predictor must have a 'command'")
	}

	timeout := args.Timeout
	if timeout <= 0 {
		timeout = defaultProgramTimeoutSeconds
	}

	return &Program{
		command: args.Command,
		args:    args.Args,
		timeout: time.Duration(timeout) * time.Second,
	}, nil
}

// Predict runs the program for one batch.
func (p *Program) Predict(ctx context.Context, batch *models.Batch) (*tensor.Dense, error) {
	if batch == nil || batch.Inputs == nil {
		return nil, fmt.Errorf("program predictor: empty batch")
	}

	req, err := json.Marshal(ProgramRequest{
		Shape:  []int(batch.Inputs.Shape()),
		Inputs: batch.Inputs.Float64s(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, p.command, p.args...)
	cmd.Stdin = bytes.NewReader(req)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("running %s: %v", p.command, err)
		if errOutput := strings.TrimSpace(stderr.String()); errOutput != "" {
			msg = fmt.Sprintf("%s; stderr: %s", msg, errOutput)
		}
		return nil, errors.New(msg)
	}

	var resp ProgramResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", p.command, err)
	}
	return scoreMatrix(resp.Scores, batch.Len())
}

// scoreMatrix packs rows of equal length into a (rows, classes) tensor.
func scoreMatrix(rows [][]float64, want int) (*tensor.Dense, error) {
	if len(rows) != want {
		return nil, fmt.Errorf("got %d score rows for a batch of %d", len(rows), want)
	}
	if want == 0 {
		return nil, fmt.Errorf("no score rows")
	}
	classes := len(rows[0])
	if classes == 0 {
		return nil, fmt.Errorf("score rows are empty")
	}
	backing := make([]float64, 0, want*classes)
	for i, r := range rows {
		if len(r) != classes {
			return nil, fmt.Errorf("score row %d has %d classes, expected %d", i, len(r), classes)
		}
		backing = append(backing, r...)
	}
	return tensor.New(tensor.WithShape(want, classes), tensor.WithBacking(backing)), nil
}
