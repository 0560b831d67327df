package contract

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// OrgFilter holds per-owner analysis rules loaded from a filter file.
// Each non-empty, non-comment line is either an owner name (skip every
// repository of that owner) or an "owner/repo" pair (that owner becomes
// allow-listed: only its listed repositories are analyzed).
type OrgFilter struct {
	excluded map[string]struct{}
	allowed  map[string]map[string]struct{}
}

// NewOrgFilter returns an empty filter that skips nothing.
func NewOrgFilter() *OrgFilter {
	return &OrgFilter{
		excluded: make(map[string]struct{}),
		allowed:  make(map[string]map[string]struct{}),
	}
}

// LoadOrgFilter reads and parses a filter file from disk.
func LoadOrgFilter(path string) (*OrgFilter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	filter := NewOrgFilter()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := filter.addLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return filter, nil
}

// ParseOrgFilter parses filter rules from an in-memory string. Used by
// tests and by configs that inline the rules.
func ParseOrgFilter(content string) (*OrgFilter, error) {
	filter := NewOrgFilter()
	for i, line := range strings.Split(content, "\n") {
		if err := filter.addLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return filter, nil
}

func (f *OrgFilter) addLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	// Trailing comments after the entry are allowed.
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
		if line == "" {
			return nil
		}
	}

	lower := strings.ToLower(line)
	switch strings.Count(lower, "/") {
	case 0:
		f.excluded[lower] = struct{}{}
	case 1:
		parts := strings.SplitN(lower, "/", 2)
		if parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("invalid entry %q, expected 'owner' or 'owner/repo'", line)
		}
		if f.allowed[parts[0]] == nil {
			f.allowed[parts[0]] = make(map[string]struct{})
		}
		f.allowed[parts[0]][parts[1]] = struct{}{}
	default:
		return fmt.Errorf("invalid entry %q, expected 'owner' or 'owner/repo'", line)
	}
	return nil
}

// ShouldSkip reports whether the repository is excluded by the filter.
// A fully-excluded owner skips everything it owns. An owner with an
// allow-list skips every repository not explicitly listed. Matching is
// case-insensitive, like GitHub owner and repo names.
func (f *OrgFilter) ShouldSkip(owner, repo string) bool {
	ownerKey := strings.ToLower(owner)
	if _, ok := f.excluded[ownerKey]; ok {
		return true
	}
	if allowList, ok := f.allowed[ownerKey]; ok {
		_, listed := allowList[strings.ToLower(repo)]
		return !listed
	}
	return false
}

// Len returns the number of loaded rules.
func (f *OrgFilter) Len() int {
	n := len(f.excluded)
	for _, allowList := range f.allowed {
		n += len(allowList)
	}
	return n
}
