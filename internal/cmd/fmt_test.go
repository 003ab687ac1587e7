package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func messyTree() map[string]string {
	return map[string]string{
		"loader.conf":       "timeout 3\n# comment\ndefault arch\n",
		"entries/arch.conf": "linux /vmlinuz\ntitle Arch\n",
		"entries/gone.conf": "title Gone\n",
	}
}

func TestFmt_Check(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, messyTree())

	cmd := newFmtCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--check"})
	err := cmd.Execute()
	if !errors.Is(err, errNotCanonical) {
		t.Fatalf("expected errNotCanonical, got %v", err)
	}
	if !strings.Contains(out.String(), "loader.conf") || !strings.Contains(out.String(), "arch.conf") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if strings.Contains(out.String(), "gone.conf") {
		t.Errorf("gone.conf is already canonical: %q", out.String())
	}
	if got := readBootFile(t, app, "loader.conf"); got != messyTree()["loader.conf"] {
		t.Errorf("--check must not write, loader.conf = %q", got)
	}
}

func TestFmt_Diff(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, messyTree())

	cmd := newFmtCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--diff"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fmt --diff failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{"--- ", "+++ ", "-# comment\n", "+default arch\n", "+title Arch\n"} {
		if !strings.Contains(output, want) {
			t.Errorf("diff missing %q:\n%s", want, output)
		}
	}
}

func TestFmt_DiffPrune(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, messyTree())
	writeBootTree(t, app, map[string]string{"entries/..conf": "title Hidden\n"})

	cmd := newFmtCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--diff", "--prune"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fmt --diff failed: %v", err)
	}
	if !strings.Contains(out.String(), "+++ /dev/null") || !strings.Contains(out.String(), "-title Hidden\n") {
		t.Errorf("expected a removal diff:\n%s", out.String())
	}
}

func TestFmt_Write(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, messyTree())

	cmd := newFmtCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fmt failed: %v", err)
	}
	if got := readBootFile(t, app, "loader.conf"); got != "default arch\ntimeout 3\n" {
		t.Errorf("loader.conf = %q", got)
	}
	if got := readBootFile(t, app, "entries/arch.conf"); got != "title Arch\nlinux /vmlinuz\n" {
		t.Errorf("arch.conf = %q", got)
	}
	if !strings.Contains(out.String(), "Wrote 3 files") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	cmd = newFmtCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--check"})
	if err := cmd.Execute(); err != nil {
		t.Errorf("tree should be canonical after fmt: %v", err)
	}
}

func TestFmt_AlreadyCanonical(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, map[string]string{
		"loader.conf":       "timeout 3\n",
		"entries/arch.conf": "title Arch\nlinux /vmlinuz\n",
	})

	cmd := newFmtCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fmt failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Already canonical" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestFmt_PruneSetting(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.WriteOpts.Prune = true
	writeBootTree(t, app, messyTree())
	writeBootTree(t, app, map[string]string{"entries/..conf": "title Hidden\n"})

	cmd := newFmtCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fmt failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(app.Root, "entries", "..conf")); !os.IsNotExist(err) {
		t.Errorf("stale entry file should be pruned, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(app.Root, "entries", "gone.conf")); err != nil {
		t.Errorf("loaded entries must survive pruning: %v", err)
	}
}
