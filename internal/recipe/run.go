package recipe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// StepResult is the outcome of running one step.
type StepResult struct {
	Name     string
	Command  string
	Output   string
	Err      error
}

// Run executes every step in r sequentially via the shell, stopping at the
// first failing step. Each step's combined stdout/stderr is captured
// regardless of outcome.
func Run(ctx context.Context, r *Recipe) ([]StepResult, error) {
	results := make([]StepResult, 0, len(r.Steps))
	for _, step := range r.Steps {
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, "sh", "-c", step.Command)
		cmd.Stdout = &out
		cmd.Stderr = &out

		err := cmd.Run()
		results = append(results, StepResult{Name: step.Name, Command: step.Command, Output: out.String(), Err: err})
		if err != nil {
			return results, fmt.Errorf("step %q failed: %w", step.Name, err)
		}
	}
	return results, nil
}
