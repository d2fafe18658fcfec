package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finprobe/internal/errors"
)

// Candidates returns the ordered list of paths tried when locating the workbook.
// An explicit path (CLI argument or FINPROBE_INPUT_PATH) is the only candidate;
// otherwise the configured filename is tried relative to the current directory,
// inside the search directory, and joined with the working directory.
func (c InputConfig) Candidates(explicit string) []string {
	if explicit == "" {
		explicit = c.Path
	}
	if explicit != "" {
		return []string{explicit}
	}

	candidates := []string{c.Filename}
	if c.SearchDir != "" {
		candidates = append(candidates, filepath.Join(c.SearchDir, c.Filename))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, c.Filename))
	}
	return candidates
}

// ResolveInput returns the first candidate that exists as a regular file
func (c InputConfig) ResolveInput(explicit string) (string, error) {
	candidates := c.Candidates(explicit)
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}

	var b strings.Builder
	b.WriteString("workbook not found in any of the expected locations:")
	for _, path := range candidates {
		fmt.Fprintf(&b, "\n   - %s", path)
	}
	return "", errors.New(errors.CodeNotFound, b.String())
}
