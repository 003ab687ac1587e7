package cmd

import (
	"fmt"
	"strings"
)

// parseKeyValuePairs splits each "key=value" argument of a repeatable flag,
// keeping the order they were given in. The value may contain '='.
func parseKeyValuePairs(args []string, flag string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid %s %q: expected key=value", flag, arg)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs, nil
}

// parseKeyValues is parseKeyValuePairs collected into a map; later
// arguments win.
func parseKeyValues(args []string, flag string) (map[string]string, error) {
	pairs, err := parseKeyValuePairs(args, flag)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		m[kv[0]] = kv[1]
	}
	return m, nil
}
