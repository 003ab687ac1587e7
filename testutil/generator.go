// Package testutil provides test utilities for boot configuration testing.
package testutil

import (
	"fmt"
	"math/rand"

	"sdbootconf/internal/bootconf"
)

// EntryAdder is anything entries can be added to, such as a *bootstore.Store.
type EntryAdder interface {
	AddEntry(e bootconf.Entry) error
}

// EntryGenerator creates valid, varied boot entries.
type EntryGenerator struct {
	rng *rand.Rand
	ids []string
}

// NewEntryGenerator creates a generator with a fixed seed so runs are reproducible.
func NewEntryGenerator(seed int64) *EntryGenerator {
	return &EntryGenerator{
		rng: rand.New(rand.NewSource(seed)),
		ids: make([]string, 0),
	}
}

// IDs returns all entry IDs created by this generator.
func (g *EntryGenerator) IDs() []string {
	return g.ids
}

var (
	distros  = []string{"arch", "debian", "fedora", "aosc", "nixos"}
	flavours = []string{"", "-lts", "-zen", "-hardened"}
	cmdlines = []string{"quiet", "splash", "rw", "loglevel=3", "nowatchdog", "mitigations=auto"}
)

// Linux creates a kernel entry. Roughly half of them carry a microcode
// initrd and an unknown directive so that lists and extras get exercised.
func (g *EntryGenerator) Linux() (bootconf.Entry, error) {
	distro := distros[g.rng.Intn(len(distros))]
	version := fmt.Sprintf("6.%d.%d%s", g.rng.Intn(20), g.rng.Intn(50), flavours[g.rng.Intn(len(flavours))])
	id := fmt.Sprintf("%s-%s-%d", distro, version, len(g.ids))

	b, err := bootconf.NewEntryBuilder(id)
	if err != nil {
		return bootconf.Entry{}, err
	}
	b.Title(fmt.Sprintf("%s (%s)", distro, version)).
		Version(version).
		SortKey(distro).
		Linux(fmt.Sprintf("/%s/vmlinuz-%s", distro, version))

	if g.rng.Intn(2) == 0 {
		b.Initrd("/intel-ucode.img")
		b.Directive("x-generated-by", "testutil")
	}
	b.Initrd(fmt.Sprintf("/%s/initramfs-%s.img", distro, version))
	b.Options(fmt.Sprintf("root=UUID=%08x %s", g.rng.Uint32(), cmdlines[g.rng.Intn(len(cmdlines))]))

	e, err := b.Build()
	if err != nil {
		return bootconf.Entry{}, err
	}
	g.ids = append(g.ids, id)
	return e, nil
}

// EFI creates an entry that chainloads an EFI program.
func (g *EntryGenerator) EFI() (bootconf.Entry, error) {
	id := fmt.Sprintf("efi-tool-%d", len(g.ids))
	b, err := bootconf.NewEntryBuilder(id)
	if err != nil {
		return bootconf.Entry{}, err
	}
	e, err := b.Title("EFI tool").Efi(fmt.Sprintf("/EFI/tools/tool%d.efi", len(g.ids))).Build()
	if err != nil {
		return bootconf.Entry{}, err
	}
	g.ids = append(g.ids, id)
	return e, nil
}

// Populate adds n generated entries to dst, every fifth one an EFI entry.
func (g *EntryGenerator) Populate(dst EntryAdder, n int) error {
	for i := 0; i < n; i++ {
		gen := g.Linux
		if i%5 == 4 {
			gen = g.EFI
		}
		e, err := gen()
		if err != nil {
			return fmt.Errorf("generate entry %d: %w", i, err)
		}
		if err := dst.AddEntry(e); err != nil {
			return fmt.Errorf("add entry %s: %w", e.ID, err)
		}
	}
	return nil
}
