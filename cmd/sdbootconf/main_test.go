package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	origStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	fn()
	w.Close()
	os.Stderr = origStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestMain_RunError(t *testing.T) {
	origRun := run
	origExit := osExit
	defer func() {
		run = origRun
		osExit = origExit
	}()

	var gotCode int
	osExit = func(code int) { gotCode = code }
	run = func() error { return fmt.Errorf("loader.conf:3: timeout: invalid value") }

	stderr := captureStderr(t, main)

	if gotCode != 1 {
		t.Errorf("expected exit code 1, got %d", gotCode)
	}
	if !strings.Contains(stderr, "loader.conf:3") {
		t.Errorf("expected error on stderr, got: %s", stderr)
	}
}

func TestMain_RunSuccess(t *testing.T) {
	origRun := run
	origExit := osExit
	defer func() {
		run = origRun
		osExit = origExit
	}()

	exitCalled := false
	osExit = func(code int) { exitCalled = true }
	run = func() error { return nil }

	stderr := captureStderr(t, main)

	if exitCalled {
		t.Error("osExit should not be called on success")
	}
	if stderr != "" {
		t.Errorf("expected no stderr output, got: %s", stderr)
	}
}
