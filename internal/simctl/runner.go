package simctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrCommandFailed is returned when `xcrun simctl` exits unsuccessfully.
var ErrCommandFailed = errors.New("simctl command failed")

// DefaultXcrunPath is the binary used when no override is configured.
const DefaultXcrunPath = "xcrun"

// Result captures the output streams of one simctl invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Text returns stdout, or stderr when stdout is empty. Some simctl
// subcommands report their outcome on stderr only.
func (r Result) Text() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	return r.Stderr
}

// Runner executes a simctl subcommand. stdin may be nil.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, args ...string) (Result, error)
}

// ExecRunner runs `<xcrun> simctl <args...>` as a child process.
type ExecRunner struct {
	xcrunPath string
}

// NewExecRunner creates a runner using xcrunPath, falling back to "xcrun".
func NewExecRunner(xcrunPath string) *ExecRunner {
	if xcrunPath == "" {
		xcrunPath = DefaultXcrunPath
	}
	return &ExecRunner{xcrunPath: xcrunPath}
}

// Run executes the subcommand and captures stdout and stderr. A non-zero
// exit is reported as ErrCommandFailed carrying simctl's stderr.
func (r *ExecRunner) Run(ctx context.Context, stdin io.Reader, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, r.xcrunPath, append([]string{"simctl"}, args...)...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if stdin != nil {
		cmd.Stdin = stdin
	}

	runErr := cmd.Run()
	res := Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String()}
	if runErr != nil {
		return res, commandError(args, res.Stderr, runErr)
	}
	return res, nil
}

func commandError(args []string, stderr string, cause error) error {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = cause.Error()
	}
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	return fmt.Errorf("%w: simctl %s: %s", ErrCommandFailed, sub, detail)
}
