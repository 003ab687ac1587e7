package cmd

import (
	"strings"
	"testing"
)

func TestDefault_Show(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newDefaultCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("default failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "arch" {
		t.Errorf("default = %q, want arch", got)
	}
}

func TestDefault_Set(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newDefaultCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"win*"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("default failed: %v", err)
	}
	if got := readBootFile(t, app, "loader.conf"); got != "default win*\ntimeout 3\n" {
		t.Errorf("loader.conf = %q", got)
	}
	if !strings.Contains(out.String(), "selects windows") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestDefault_NoMatch(t *testing.T) {
	app, _, errOut := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newDefaultCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"gentoo"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for a pattern matching no entry")
	}
	if got := readBootFile(t, app, "loader.conf"); got != archTree()["loader.conf"] {
		t.Errorf("loader.conf changed: %q", got)
	}

	cmd = newDefaultCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"gentoo", "--force"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("default --force failed: %v", err)
	}
	if got := readBootFile(t, app, "loader.conf"); got != "default gentoo\ntimeout 3\n" {
		t.Errorf("loader.conf = %q", got)
	}
	if !strings.Contains(errOut.String(), "matches no entry") {
		t.Errorf("expected a warning, got %q", errOut.String())
	}
}
