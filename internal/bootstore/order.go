package bootstore

import (
	"cmp"
	"slices"
	"strings"

	"sdbootconf/internal/bootconf"
)

// MenuOrder returns the entries in the order systemd-boot shows them:
// entries with a sort-key first, by sort-key, then machine-id, then newest
// version; then everything by id, newest version first.
func (s *Store) MenuOrder() []bootconf.Entry {
	out := s.Entries()
	slices.SortStableFunc(out, compareMenu)
	return out
}

func compareMenu(a, b bootconf.Entry) int {
	if c := cmp.Compare(boolRank(a.SortKey == ""), boolRank(b.SortKey == "")); c != 0 {
		return c
	}
	if a.SortKey != "" {
		if c := strings.Compare(a.SortKey, b.SortKey); c != 0 {
			return c
		}
		if c := strings.Compare(a.MachineID, b.MachineID); c != 0 {
			return c
		}
		if c := compareVersion(a.Version, b.Version); c != 0 {
			return -c
		}
	}
	return -compareVersion(a.ID, b.ID)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareVersion orders strings the way version numbers read: runs of digits
// compare by value, everything else byte by byte.
func compareVersion(a, b string) int {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			var na, nb string
			na, a = splitRun(a, true)
			nb, b = splitRun(b, true)
			na = strings.TrimLeft(na, "0")
			nb = strings.TrimLeft(nb, "0")
			if c := cmp.Compare(len(na), len(nb)); c != 0 {
				return c
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
		case da != db:
			// 5.12 sorts after 5.rc
			if da {
				return 1
			}
			return -1
		default:
			var sa, sb string
			sa, a = splitRun(a, false)
			sb, b = splitRun(b, false)
			if c := strings.Compare(sa, sb); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(a), len(b))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitRun(s string, digits bool) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}
