package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sdbootconf/internal/bootstore"
)

func TestEntryAdd_Flags(t *testing.T) {
	app, out, _ := newTestApp(t)

	cmd := newEntryAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch",
		"--title", "Arch Linux",
		"--linux", "/vmlinuz-linux",
		"--initrd", "/intel-ucode.img",
		"--initrd", "/initramfs-linux.img",
		"--options", "root=/dev/sda2 rw",
		"--set", "x-vendor=acme corp",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry add failed: %v", err)
	}

	want := "title Arch Linux\nlinux /vmlinuz-linux\ninitrd /intel-ucode.img /initramfs-linux.img\n" +
		"options root=/dev/sda2 rw\nx-vendor acme corp\n"
	if got := readBootFile(t, app, "entries/arch.conf"); got != want {
		t.Errorf("entry file =\n%q\nwant\n%q", got, want)
	}
	if !strings.Contains(out.String(), "Created entry arch") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestEntryAdd_Duplicate(t *testing.T) {
	app, _, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newEntryAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch", "--linux", "/vmlinuz"})
	err := cmd.Execute()
	if !errors.Is(err, bootstore.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestEntryAdd_InvalidID(t *testing.T) {
	app, _, _ := newTestApp(t)

	cmd := newEntryAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"bad/id", "--linux", "/vmlinuz"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for an id with a slash")
	}
	if _, err := os.Stat(filepath.Join(app.Root, "entries")); err == nil {
		t.Error("nothing should be written for a rejected id")
	}
}

func TestEntryAdd_NoKernelWarns(t *testing.T) {
	app, _, errOut := newTestApp(t)

	cmd := newEntryAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"empty", "--title", "Nothing"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry add failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "neither linux nor efi") {
		t.Errorf("expected a warning, got: %s", errOut.String())
	}
}

func TestEntryAdd_Template(t *testing.T) {
	app, _, _ := newTestApp(t)
	dir := t.TempDir()
	tmpl := `description = "Arch kernel"
title = "Arch Linux ({{kernel}})"
linux = "/vmlinuz-{{kernel}}"
initrd = ["/initramfs-{{kernel}}.img"]
options = "root=/dev/sda2 rw"

[vars.kernel]
default = "linux"
enum = ["linux", "linux-lts"]
`
	if err := os.WriteFile(filepath.Join(dir, "arch.toml"), []byte(tmpl), 0644); err != nil {
		t.Fatal(err)
	}
	app.TemplatePath = []string{dir}

	cmd := newEntryAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch-lts", "--template", "arch", "--var", "kernel=linux-lts", "--options", "root=/dev/sda3"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry add failed: %v", err)
	}

	want := "title Arch Linux (linux-lts)\nlinux /vmlinuz-linux-lts\ninitrd /initramfs-linux-lts.img\noptions root=/dev/sda3\n"
	if got := readBootFile(t, app, "entries/arch-lts.conf"); got != want {
		t.Errorf("entry file =\n%q\nwant\n%q", got, want)
	}

	cmd = newEntryAddCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch-bad", "--template", "arch", "--var", "kernel=linux-zen"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for a value outside the enum")
	}
}

func TestEntryList(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newEntryListCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry list failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "* arch") {
		t.Errorf("default entry should be marked: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  windows") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestEntryList_JSON(t *testing.T) {
	app, out, _ := newTestApp(t)
	app.JSON = true
	writeBootTree(t, app, archTree())

	cmd := newEntryListCmd(NewTestProvider(app))
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry list failed: %v", err)
	}

	var entries []bootstore.EntrySnapshot
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "arch" || entries[1].ID != "windows" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestEntryShow(t *testing.T) {
	app, out, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newEntryShowCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"windows"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry show failed: %v", err)
	}
	if !strings.HasSuffix(out.String(), "title Windows\nefi /EFI/Microsoft/Boot/bootmgfw.efi\n") {
		t.Errorf("unexpected output: %q", out.String())
	}

	cmd = newEntryShowCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"nope"})
	if err := cmd.Execute(); !errors.Is(err, bootstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryRemove(t *testing.T) {
	app, out, errOut := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newEntryRemoveCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry remove failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(app.Root, "entries", "arch.conf")); !os.IsNotExist(err) {
		t.Errorf("entry file should be gone, stat err = %v", err)
	}
	if !strings.Contains(out.String(), "Removed entry arch") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if !strings.Contains(errOut.String(), "no longer matches") {
		t.Errorf("expected a warning about the default, got: %s", errOut.String())
	}

	cmd = newEntryRemoveCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch"})
	if err := cmd.Execute(); !errors.Is(err, bootstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntrySetUnset(t *testing.T) {
	app, _, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newEntrySetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch", "options", "root=/dev/sda2 rw quiet"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry set failed: %v", err)
	}
	cmd = newEntrySetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch", "initrd", "/intel-ucode.img /initramfs-linux.img"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry set failed: %v", err)
	}
	cmd = newEntryUnsetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"arch", "title"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("entry unset failed: %v", err)
	}

	want := "linux /vmlinuz-linux\ninitrd /intel-ucode.img /initramfs-linux.img\noptions root=/dev/sda2 rw quiet\n"
	if got := readBootFile(t, app, "entries/arch.conf"); got != want {
		t.Errorf("entry file =\n%q\nwant\n%q", got, want)
	}
}

func TestEntrySet_UnknownEntry(t *testing.T) {
	app, _, _ := newTestApp(t)
	writeBootTree(t, app, archTree())

	cmd := newEntrySetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"gentoo", "title", "Gentoo"})
	if err := cmd.Execute(); !errors.Is(err, bootstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
