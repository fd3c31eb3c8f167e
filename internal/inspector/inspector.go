// Package inspector runs the external nuget-inspector binary and captures
// its outcome. The adapter never decides pass or fail: exit codes are data
// for the harness classifier.
package inspector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single inspector invocation so one hung process
// cannot stall the whole suite.
const DefaultTimeout = 5 * time.Minute

// Request describes a single inspector invocation.
type Request struct {
	ProjectFile     string
	Output          string // result file, or directory for solution inputs
	TargetFramework string
	NugetConfig     string
	WithDetails     bool
	WithFallback    bool
	Verbose         bool
	ExtraArgs       []string
}

// Args builds the argument vector for the invocation. Arguments are always a
// vector, never a joined shell string, so paths with spaces or shell
// metacharacters need no quoting.
func (r Request) Args() []string {
	args := []string{
		"--project-file", r.ProjectFile,
		"--json", r.Output,
	}
	if r.TargetFramework != "" {
		args = append(args, "--target-framework", r.TargetFramework)
	}
	if r.NugetConfig != "" {
		args = append(args, "--nuget-config", r.NugetConfig)
	}
	if r.WithDetails {
		args = append(args, "--with-details")
	}
	if r.WithFallback {
		args = append(args, "--with-fallback")
	}
	if r.Verbose {
		args = append(args, "--verbose")
	}
	return append(args, r.ExtraArgs...)
}

// Result captures one finished invocation.
type Result struct {
	ExitCode int
	Output   []byte // combined stdout and stderr
	Duration time.Duration
	TimedOut bool
}

// Invoker executes the inspector binary.
type Invoker struct {
	Binary  string
	Timeout time.Duration
}

// NewInvoker creates an invoker for the given binary with the default
// per-invocation timeout.
func NewInvoker(binary string) *Invoker {
	return &Invoker{Binary: binary, Timeout: DefaultTimeout}
}

// CheckBinary verifies that the inspector binary exists and is executable
// before any case runs, so a misconfigured path fails fast with a clear
// message instead of failing every case.
func (iv *Invoker) CheckBinary() error {
	if _, err := exec.LookPath(iv.Binary); err != nil {
		if _, statErr := os.Stat(iv.Binary); statErr == nil {
			return fmt.Errorf("inspector binary %s is not executable: %w", iv.Binary, err)
		}
		return fmt.Errorf("inspector binary not found: %s", iv.Binary)
	}
	return nil
}

// Run executes one invocation, capturing exit code and combined output.
// A non-zero exit is returned as data in Result, not as an error; the error
// return is reserved for invocation failures (the process could not start).
// A timed-out invocation is reported with Result.TimedOut set; the harness
// classifies expiry as a hard failure, never a retry.
func (iv *Invoker) Run(ctx context.Context, req Request) (*Result, error) {
	timeout := iv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, iv.Binary, req.Args()...)
	cmd.Env = os.Environ()

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Output:   combined.Bytes(),
		Duration: time.Since(start),
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("running %s: %w", iv.Binary, err)
}

// RunVerbose re-runs the request with the diagnostic flag and returns the
// captured output. The result is for failure reporting only and must never
// alter a classification decision.
func (iv *Invoker) RunVerbose(ctx context.Context, req Request) string {
	req.Verbose = true
	res, err := iv.Run(ctx, req)
	if err != nil {
		return fmt.Sprintf("verbose re-run failed to start: %v", err)
	}
	return string(res.Output)
}
