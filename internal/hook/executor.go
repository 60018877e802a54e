package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultTimeout bounds a single hook command.
const DefaultTimeout = 5 * time.Second

// Executor runs hook commands with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates a new Executor. A non-positive timeout selects DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Execute runs the rule's command with the signal as JSON on stdin.
// Output on stdout is discarded; stderr is included in the error on failure.
func (e *Executor) Execute(ctx context.Context, rule Rule, sig gesture.Signal) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	cmd := exec.CommandContext(ctx, rule.Command[0], rule.Command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("hook %q timed out after %s", rule.Name, e.timeout)
	}

	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("hook %q failed: %w, stderr: %s", rule.Name, err, stderr.String())
		}
		return fmt.Errorf("hook %q failed: %w", rule.Name, err)
	}

	return nil
}
