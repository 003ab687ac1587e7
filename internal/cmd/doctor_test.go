package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDoctorCmd_NoProblems(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newDoctorCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("doctor command failed: %v", err)
	}
	if !strings.Contains(out.String(), "No problems found") {
		t.Errorf("expected 'No problems found', got: %s", out.String())
	}
}

func TestDoctorCmd_WithProblems(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, map[string]string{
		"loader.conf":              "default gentoo\n",
		"entries/arch.conf":        "title Arch\nlinux /vmlinuz\n",
		"entries/notes.txt":        "not an entry\n",
		"entries/.arch.conf.tmp.1": "title Arch\n",
	})

	cmd := newDoctorCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("doctor command failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"Found 3 problems",
		`default "gentoo" matches no entry`,
		"ignored file (not *.conf): entries/notes.txt",
		"orphaned temp file: entries/.arch.conf.tmp.1",
		"doctor --fix",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if _, err := os.Stat(filepath.Join(app.Root, "entries", ".arch.conf.tmp.1")); err != nil {
		t.Errorf("doctor without --fix must not remove files: %v", err)
	}
}

func TestDoctorCmd_FixJSON(t *testing.T) {
	app, out, _ := newTestApp(t)
	app.JSON = true
	writeBootTree(t, app, map[string]string{
		"entries/arch.conf":                "title Arch\nlinux /vmlinuz\n",
		".loader.conf.tmp.0b8f2c3d-1e5a-4": "timeout 1\n",
	})

	cmd := newDoctorCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--fix"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("doctor command failed: %v", err)
	}

	var result DoctorResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if !result.Fixed || len(result.Problems) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(filepath.Join(app.Root, ".loader.conf.tmp.0b8f2c3d-1e5a-4")); !os.IsNotExist(err) {
		t.Errorf("temp file should be removed, stat err = %v", err)
	}
}
