// Package llmcli invokes a locally installed LLM CLI (by default "claude")
// as a subprocess, rather than calling a hosted API directly. The teacher's
// internal/compact package talks to Claude over anthropic-sdk-go; this
// module instead treats the model as an opaque external tool the same way
// the teacher's cmd/bd/doctor package treats "bd" and "claude" themselves -
// located with exec.LookPath, invoked with exec.Command, with retry/backoff
// around the call borrowed from compact.HaikuClient.callWithRetry.
package llmcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"time"

	"github.com/kgraphdb/kgraph/internal/kgerr"
)

const (
	maxRetries     = 2
	initialBackoff = 2 * time.Second
)

// Client invokes the configured LLM CLI as a subprocess.
type Client struct {
	executable string
	timeout    time.Duration
}

// New returns a Client that shells out to executable (a name resolved via
// PATH, or an absolute path), bounding each call by timeout.
func New(executable string, timeout time.Duration) *Client {
	return &Client{executable: executable, timeout: timeout}
}

// CheckAvailable reports whether the configured executable can be found on
// PATH, wrapping the result in kgerr.ErrExternalToolMissing like the
// teacher's CheckBdInPath doctor check.
func (c *Client) CheckAvailable() error {
	if _, err := exec.LookPath(c.executable); err != nil {
		return fmt.Errorf("%s: %w", c.executable, kgerr.ErrExternalToolMissing)
	}
	return nil
}

// Usage reports token accounting for one call, when the CLI's output
// includes it (spec.md §6's synthesis contract asks for it on a best-effort
// basis; entity extraction calls leave it zero).
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Run invokes the CLI with args, writing prompt to stdin and returning
// stdout as raw text. This is the low-level primitive; callers that need
// JSON (entity extraction) or markdown (synthesis) parse the returned
// string themselves, matching spec.md §6's "two independent contracts over
// one subprocess interface."
func (c *Client) Run(ctx context.Context, model, prompt string, args ...string) (string, Usage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fullArgs := append([]string{"--model", model}, args...)

	var stdout, stderr bytes.Buffer
	err := c.runWithRetry(ctx, func() *exec.Cmd {
		cmd := exec.CommandContext(ctx, c.executable, fullArgs...)
		cmd.Stdin = bytes.NewBufferString(prompt)
		stdout.Reset()
		stderr.Reset()
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		return cmd
	})
	if ctx.Err() == context.DeadlineExceeded {
		return "", Usage{}, fmt.Errorf("%s timed out after %s: %w", c.executable, c.timeout, kgerr.ErrTimeout)
	}
	if err != nil {
		return "", Usage{}, fmt.Errorf("%s failed: %s: %w", c.executable, stderr.String(), kgerr.ErrExternalToolFailed)
	}

	return stdout.String(), parseUsageFromStderr(stderr.String()), nil
}

// runWithRetry retries a transient subprocess failure (non-zero exit from a
// CLI hiccup, not a context cancellation) with exponential backoff, the
// same shape as compact.HaikuClient.callWithRetry. newCmd is called fresh
// on every attempt since an *exec.Cmd can only be run once.
func (c *Client) runWithRetry(ctx context.Context, newCmd func() *exec.Cmd) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = newCmd().Run()
		if lastErr == nil {
			return nil
		}
		var exitErr *exec.ExitError
		if !errors.As(lastErr, &exitErr) {
			// Not a process exit (e.g. executable not found) - retrying won't help.
			return lastErr
		}
	}
	return lastErr
}

// parseUsageFromStderr recognizes no stderr format: it always returns a
// zero Usage.
func parseUsageFromStderr(stderr string) Usage {
	return Usage{}
}
