package snmp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// execCommand is used to mock commands in tests.
var execCommand = exec.CommandContext

const maxLineSize = 1024 * 1024

// ExitError is returned when a tool ran but exited non-zero. Command is the
// tool's base name; Stderr holds whatever it printed there, trimmed.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.Code, e.Stderr)
}

// StartError is returned when a tool could not be spawned at all.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("cannot run %s: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExecRunner runs queries through the net-snmp command line tools.
type ExecRunner struct {
	logger *zap.Logger
	tools  Tools
	target Target
}

func NewExecRunner(logger *zap.Logger, tools Tools, target Target) *ExecRunner {
	return &ExecRunner{
		logger: logger,
		tools:  tools,
		target: target,
	}
}

// Run spawns the tool for req.Op and streams its stdout to handle. Stderr is
// drained concurrently so a chatty tool cannot block on a full pipe.
func (r *ExecRunner) Run(ctx context.Context, req Request, handle func(line string)) error {
	name := r.tools.Path(req.Op)
	args := BuildArgs(r.target, req)
	r.logger.Debug("running", zap.String("cmd", name), zap.Strings("args", redactArgs(args)))

	cmd := execCommand(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &StartError{Command: name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &StartError{Command: name, Err: err}
	}
	if err := cmd.Start(); err != nil {
		r.logger.Error("failed to start", zap.String("cmd", name), zap.Error(err))
		return &StartError{Command: name, Err: err}
	}

	var errOut bytes.Buffer
	eg := new(errgroup.Group)
	eg.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			r.logger.Debug("stderr", zap.String("cmd", name), zap.String("line", line))
			errOut.WriteString(line)
			errOut.WriteByte('\n')
		}
		if err := scanner.Err(); err != nil {
			_, _ = io.Copy(io.Discard, stderr)
			return err
		}
		return nil
	})

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		handle(scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := eg.Wait(); err != nil {
		r.logger.Warn("failed to read stderr", zap.String("cmd", name), zap.Error(err))
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{
				Command: filepath.Base(name),
				Code:    exitErr.ExitCode(),
				Stderr:  strings.TrimSpace(errOut.String()),
			}
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	if scanErr != nil {
		return fmt.Errorf("read %s output: %w", name, scanErr)
	}
	return nil
}
