// Package ruleset loads optional per-repository
// overrides from a YAML file: glob patterns excluding
// repositories from the candidate set, and explicit
// target name overrides that win over derived names.
package ruleset

import (
	"fmt"
	"os"
	"path"

	"github.com/goccy/go-yaml"
)

// Rules holds the parsed overrides. The nil *Rules is
// valid and matches nothing.
type Rules struct {
	// Exclude lists glob patterns matched against the
	// full source path ("namespace/name").
	Exclude []string `yaml:"exclude"`

	// Rename maps full source paths to explicit
	// target repository names.
	Rename map[string]string `yaml:"rename"`
}

// Load reads and validates a rules file.
func Load(file string) (*Rules, error) {
	const errCtx = "loading rules file"

	data, err := os.ReadFile(file) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf(
			"%s: parse yaml: %w", errCtx, err,
		)
	}

	for _, pat := range r.Exclude {
		// Matching a pattern against itself walks the
		// whole pattern, surfacing ErrBadPattern.
		if _, err := path.Match(pat, pat); err != nil {
			return nil, fmt.Errorf(
				"%s: bad pattern %q: %w",
				errCtx, pat, err,
			)
		}
	}

	return &r, nil
}

// Excluded reports whether the repository path matches
// any exclude pattern.
func (r *Rules) Excluded(repoPath string) bool {
	if r == nil {
		return false
	}

	for _, pat := range r.Exclude {
		ok, err := path.Match(pat, repoPath)
		if err == nil && ok {
			return true
		}
	}

	return false
}

// TargetName returns the rename override for the path,
// if one is configured.
func (r *Rules) TargetName(
	repoPath string,
) (string, bool) {
	if r == nil {
		return "", false
	}

	name, ok := r.Rename[repoPath]

	return name, ok
}
