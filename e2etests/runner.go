// Package e2etests runs the sdbootconf binary against scratch boot
// directories.
package e2etests

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes sdbootconf commands against a sandbox directory.
type Runner struct {
	Cmd string // path to the sdbootconf binary
}

// Sandbox is a scratch boot loader root plus a private settings file.
type Sandbox struct {
	Dir      string
	Root     string
	Settings string
}

// SetupSandbox creates a fresh sandbox. The root itself is not created.
func (r *Runner) SetupSandbox() (*Sandbox, error) {
	dir, err := os.MkdirTemp("", "sdbootconf-e2e-*")
	if err != nil {
		return nil, fmt.Errorf("setup sandbox failed: %w", err)
	}
	return &Sandbox{
		Dir:      dir,
		Root:     filepath.Join(dir, "efi", "loader"),
		Settings: filepath.Join(dir, "settings.yaml"),
	}, nil
}

// TeardownSandbox removes a sandbox directory.
func (r *Runner) TeardownSandbox(sb *Sandbox) error {
	return os.RemoveAll(sb.Dir)
}

// RunResult holds the output of a command execution.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes sdbootconf with the given arguments. The sandbox root and
// settings file are passed through the environment.
func (r *Runner) Run(sb *Sandbox, args ...string) RunResult {
	return r.RunStdin(sb, "", args...)
}

// RunStdin is Run with stdin.
func (r *Runner) RunStdin(sb *Sandbox, stdin string, args ...string) RunResult {
	cmd := exec.Command(r.Cmd, args...)
	cmd.Dir = sb.Dir
	cmd.Env = append(os.Environ(),
		"SDBOOTCONF_ROOT="+sb.Root,
		"SDBOOTCONF_SETTINGS="+sb.Settings,
		"SDBOOTCONF_LOG_LEVEL=error",
	)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
		stderr.WriteString(err.Error())
	}

	return RunResult{
		Stdout:   normalize(stdout.String(), sb),
		Stderr:   normalize(stderr.String(), sb),
		ExitCode: exitCode,
	}
}

// normalize replaces sandbox paths so output can be compared across runs.
func normalize(s string, sb *Sandbox) string {
	s = strings.ReplaceAll(s, sb.Root, "$ROOT")
	return strings.ReplaceAll(s, sb.Dir, "$SANDBOX")
}

// ReadFile returns a file under the sandbox root, or "" if it is missing.
func (sb *Sandbox) ReadFile(rel string) string {
	data, err := os.ReadFile(filepath.Join(sb.Root, filepath.FromSlash(rel)))
	if err != nil {
		return ""
	}
	return string(data)
}
