package cluster

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs commands against the cluster CLI.
type Executor interface {
	// Exec runs the command with the specified args, discarding its output.
	Exec(ctx context.Context, args ...string) error
	// Get runs the command with the specified args and returns the output as string.
	Get(ctx context.Context, args ...string) (string, error)
	// Pipe runs the command with the given payload on stdin.
	Pipe(ctx context.Context, stdin string, args ...string) (string, error)
}

// OcExecutor an executor that shells out to run oc commands
type OcExecutor struct {
	oc      string
	envVars []string
}

// NewOcExecutor creates a new executor that runs oc commands
func NewOcExecutor(oc string, envVars []string) OcExecutor {
	return OcExecutor{
		envVars: envVars,
		oc:      oc,
	}
}

// Exec execute the oc command with the specified args
func (e OcExecutor) Exec(ctx context.Context, args ...string) error {
	cmd := e.buildCmd(ctx, args)
	if len(e.envVars) > 0 {
		cmd.Env = e.envVars
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Get execute the oc command with the specified args and returns the output as string
func (e OcExecutor) Get(ctx context.Context, args ...string) (string, error) {
	cmd := e.buildCmd(ctx, args)
	if len(e.envVars) > 0 {
		cmd.Env = e.envVars
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
	} else {
		return strings.TrimSuffix(string(output), "\n"), nil
	}
}

// Pipe execute the oc command by piping the payload arg
func (e OcExecutor) Pipe(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := e.buildCmd(ctx, args)
	if len(e.envVars) > 0 {
		cmd.Env = e.envVars
	}
	cmd.Stdin = strings.NewReader(stdin)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
	} else {
		return strings.TrimSuffix(string(output), "\n"), nil
	}
}

func (e OcExecutor) buildCmd(ctx context.Context, args []string) *exec.Cmd {
	s := append(strings.Fields(e.oc), args...)
	return exec.CommandContext(ctx, s[0], s[1:]...)
}
