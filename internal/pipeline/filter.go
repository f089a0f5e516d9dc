package pipeline

import (
	"path"
	"strings"
)

// Matcher tells whether a namespace path should be left out of the sync.
// Patterns use path.Match syntax and are tested against every element of
// the path, so "*.part" skips partial uploads and ".*" skips hidden files
// and everything below hidden directories.
type Matcher struct {
	patterns []string
}

func NewMatcher(patterns []string) *Matcher {
	var ps []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			ps = append(ps, p)
		}
	}
	return &Matcher{patterns: ps}
}

func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

func (m *Matcher) ShouldIgnore(p string) bool {
	if m.Empty() {
		return false
	}

	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		for _, pattern := range m.patterns {
			matched, err := path.Match(pattern, part)
			if err == nil && matched {
				return true
			}
		}
	}

	return false
}
