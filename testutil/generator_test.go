package testutil

import (
	"testing"

	"sdbootconf/internal/bootconf"
)

type sliceAdder struct {
	entries []bootconf.Entry
}

func (s *sliceAdder) AddEntry(e bootconf.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func TestNewEntryGenerator(t *testing.T) {
	gen := NewEntryGenerator(1)
	if gen == nil {
		t.Fatal("NewEntryGenerator returned nil")
	}
	if len(gen.IDs()) != 0 {
		t.Error("new generator should have no IDs")
	}
}

func TestEntryGenerator_Populate(t *testing.T) {
	gen := NewEntryGenerator(42)
	dst := &sliceAdder{}

	if err := gen.Populate(dst, 10); err != nil {
		t.Fatalf("Populate failed: %v", err)
	}
	if len(dst.entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(dst.entries))
	}
	if len(gen.IDs()) != 10 {
		t.Errorf("generator should track 10 IDs, got %d", len(gen.IDs()))
	}

	seen := make(map[string]bool)
	efi := 0
	for _, e := range dst.entries {
		if seen[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
		if err := bootconf.ValidateID(e.ID); err != nil {
			t.Errorf("invalid id %s: %v", e.ID, err)
		}
		if e.Efi != "" {
			efi++
			continue
		}
		if e.Linux == "" {
			t.Errorf("entry %s has neither linux nor efi", e.ID)
		}
		if len(e.Initrd) == 0 {
			t.Errorf("entry %s has no initrd", e.ID)
		}
	}
	if efi != 2 {
		t.Errorf("expected 2 EFI entries, got %d", efi)
	}
}

func TestEntryGenerator_RoundTrips(t *testing.T) {
	gen := NewEntryGenerator(7)
	for i := 0; i < 20; i++ {
		e, err := gen.Linux()
		if err != nil {
			t.Fatalf("Linux failed: %v", err)
		}
		back, err := bootconf.ParseEntry(e.ID, e.String())
		if err != nil {
			t.Fatalf("ParseEntry(%s) failed: %v", e.ID, err)
		}
		if !back.Equal(e) {
			t.Errorf("entry %s did not round trip:\n%s", e.ID, e.String())
		}
	}
}
