package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NoMatchError reports a glob pattern that expanded to nothing.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("No files matched pattern: %s", e.Pattern)
}

// expandInputs resolves patterns to concrete paths in command-line
// order. Only arguments containing glob metacharacters are expanded
// (sorted within the pattern); plain paths pass through and every
// result must exist.
func expandInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	var inputs []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			inputs = append(inputs, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, &NoMatchError{Pattern: arg}
		}
		sort.Strings(matches)
		inputs = append(inputs, matches...)
	}
	for _, path := range inputs {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("Input file not found: %s", path)
		}
	}
	return inputs, nil
}
