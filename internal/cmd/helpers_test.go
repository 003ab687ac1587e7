package cmd

import (
	"reflect"
	"testing"
)

func TestParseKeyValuePairs(t *testing.T) {
	got, err := parseKeyValuePairs([]string{"kernel=linux-lts", "cmdline=root=/dev/sda2 rw", "empty="}, "--var")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]string{
		{"kernel", "linux-lts"},
		{"cmdline", "root=/dev/sda2 rw"},
		{"empty", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseKeyValuePairs_Invalid(t *testing.T) {
	for _, arg := range []string{"novalue", "=x", " =x"} {
		if _, err := parseKeyValuePairs([]string{arg}, "--set"); err == nil {
			t.Errorf("expected error for %q", arg)
		}
	}
}

func TestParseKeyValues_LaterWins(t *testing.T) {
	got, err := parseKeyValues([]string{"a=1", "b=2", "a=3"}, "--var")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"a": "3", "b": "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
