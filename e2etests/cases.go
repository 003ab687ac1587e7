package e2etests

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TestCase is one scripted session against a fresh sandbox.
type TestCase struct {
	Name string
	Fn   func(r *Runner, sb *Sandbox) error
}

var testCases = []TestCase{
	{"init_and_add", caseInitAndAdd},
	{"fmt_canonicalizes", caseFmtCanonicalizes},
	{"import_roundtrip", caseImportRoundTrip},
	{"settings_override", caseSettingsOverride},
}

// expect runs args and checks the exit code and that stdout contains want.
func expect(r *Runner, sb *Sandbox, code int, want string, args ...string) error {
	res := r.Run(sb, args...)
	if res.ExitCode != code {
		return fmt.Errorf("%s: exit %d, want %d\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), res.ExitCode, code, res.Stdout, res.Stderr)
	}
	if !strings.Contains(res.Stdout, want) {
		return fmt.Errorf("%s: stdout %q does not contain %q", strings.Join(args, " "), res.Stdout, want)
	}
	return nil
}

// expectFile checks a file under the sandbox root.
func expectFile(sb *Sandbox, rel, want string) error {
	if got := sb.ReadFile(rel); got != want {
		return fmt.Errorf("%s = %q, want %q", rel, got, want)
	}
	return nil
}

func caseInitAndAdd(r *Runner, sb *Sandbox) error {
	steps := []func() error{
		func() error { return expect(r, sb, 0, "Initialized", "init", "--timeout", "3") },
		func() error {
			return expect(r, sb, 0, "Created entry arch", "entry", "add", "arch",
				"--title", "Arch Linux", "--linux", "/vmlinuz-linux",
				"--initrd", "/intel-ucode.img", "--initrd", "/initramfs-linux.img",
				"--options", "root=/dev/sda2 rw")
		},
		func() error {
			return expect(r, sb, 0, "Created entry windows", "entry", "add", "windows",
				"--title", "Windows", "--efi", "/EFI/Microsoft/Boot/bootmgfw.efi")
		},
		func() error { return expect(r, sb, 0, "selects arch", "default", "arch*") },
		func() error { return expect(r, sb, 1, "", "entry", "add", "arch", "--linux", "/x") },
		func() error { return expect(r, sb, 0, "No problems found", "doctor") },
		func() error { return expectFile(sb, "loader.conf", "default arch*\ntimeout 3\n") },
		func() error {
			return expectFile(sb, "entries/arch.conf", "title Arch Linux\nlinux /vmlinuz-linux\n"+
				"initrd /intel-ucode.img /initramfs-linux.img\noptions root=/dev/sda2 rw\n")
		},
		func() error { return expect(r, sb, 0, "* arch", "entry", "list") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func caseFmtCanonicalizes(r *Runner, sb *Sandbox) error {
	if err := os.MkdirAll(filepath.Join(sb.Root, "entries"), 0755); err != nil {
		return err
	}
	files := map[string]string{
		"loader.conf":       "# managed by hand\ntimeout 10\neditor yes\ndefault arch\n",
		"entries/arch.conf": "options quiet\nlinux /vmlinuz\noptions rw\ntitle Arch\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(sb.Root, filepath.FromSlash(rel)), []byte(content), 0644); err != nil {
			return err
		}
	}

	if err := expect(r, sb, 1, "loader.conf", "fmt", "--check"); err != nil {
		return err
	}
	if err := expect(r, sb, 0, "-# managed by hand", "fmt", "--diff"); err != nil {
		return err
	}
	if err := expect(r, sb, 0, "Wrote 2 files", "fmt"); err != nil {
		return err
	}
	if err := expectFile(sb, "loader.conf", "default arch\ntimeout 10\neditor 1\n"); err != nil {
		return err
	}
	if err := expectFile(sb, "entries/arch.conf", "title Arch\nlinux /vmlinuz\noptions quiet rw\n"); err != nil {
		return err
	}
	return expect(r, sb, 0, "", "fmt", "--check")
}

func caseImportRoundTrip(r *Runner, sb *Sandbox) error {
	if err := expect(r, sb, 0, "", "init", "--timeout", "5"); err != nil {
		return err
	}
	if err := expect(r, sb, 0, "", "entry", "add", "gentoo", "--title", "Gentoo", "--linux", "/vmlinuz"); err != nil {
		return err
	}
	show := r.Run(sb, "show", "--format", "toml")
	if show.ExitCode != 0 {
		return fmt.Errorf("show failed: %s", show.Stderr)
	}
	if err := expect(r, sb, 0, "Removed entry gentoo", "entry", "remove", "gentoo"); err != nil {
		return err
	}

	snapshot := filepath.Join(sb.Dir, "boot.toml")
	if err := os.WriteFile(snapshot, []byte(show.Stdout), 0644); err != nil {
		return err
	}
	if err := expect(r, sb, 0, "Imported 1 entries", "import", snapshot); err != nil {
		return err
	}
	return expectFile(sb, "entries/gentoo.conf", "title Gentoo\nlinux /vmlinuz\n")
}

func caseSettingsOverride(r *Runner, sb *Sandbox) error {
	if err := expect(r, sb, 0, "Set write.file-mode = 0600", "settings", "set", "write.file-mode", "0600"); err != nil {
		return err
	}
	if err := expect(r, sb, 1, "", "settings", "set", "write.atomic", "maybe"); err != nil {
		return err
	}
	if err := expect(r, sb, 0, "", "init"); err != nil {
		return err
	}
	fi, err := os.Stat(filepath.Join(sb.Root, "loader.conf"))
	if err != nil {
		return err
	}
	if perm := fi.Mode().Perm(); perm != 0600 {
		return fmt.Errorf("loader.conf mode = %o, want 600", perm)
	}
	// The root comes from the environment and must not leak into the file.
	data, err := os.ReadFile(sb.Settings)
	if err != nil {
		return err
	}
	if strings.Contains(string(data), "root") {
		return fmt.Errorf("settings file holds an override: %s", data)
	}
	return nil
}
