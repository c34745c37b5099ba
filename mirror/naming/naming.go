// Package naming derives target repository names from
// source project paths. The zero Options value keeps
// only the project name; namespace flattening, segment
// stripping, and duplicate collapsing are opt-in.
package naming

import "strings"

// Options controls how a target name is derived from a
// "namespace/sub/project" path.
type Options struct {
	// KeepNamespaces joins all path segments with
	// "-" instead of keeping only the project name.
	KeepNamespaces bool

	// Strip lists namespace segments to drop when
	// KeepNamespaces is set. The final segment is
	// never dropped.
	Strip []string

	// CollapseDuplicates folds consecutive repeated
	// name parts ("acme-acme-widget" becomes
	// "acme-widget").
	CollapseDuplicates bool
}

// TargetName derives the target repository name for a
// source project path.
func TargetName(
	pathWithNamespace string,
	opts Options,
) string {
	segments := strings.Split(pathWithNamespace, "/")

	if !opts.KeepNamespaces {
		return segments[len(segments)-1]
	}

	segments = stripSegments(segments, opts.Strip)

	name := strings.Join(segments, "-")

	if opts.CollapseDuplicates {
		name = collapseParts(name)
	}

	return name
}

// stripSegments removes namespace segments listed in
// strip, keeping the final segment untouched.
func stripSegments(
	segments []string,
	strip []string,
) []string {
	if len(strip) == 0 || len(segments) < 2 {
		return segments
	}

	drop := make(map[string]struct{}, len(strip))
	for _, s := range strip {
		drop[s] = struct{}{}
	}

	kept := make([]string, 0, len(segments))

	for i, seg := range segments {
		if i < len(segments)-1 {
			if _, ok := drop[seg]; ok {
				continue
			}
		}

		kept = append(kept, seg)
	}

	return kept
}

// collapseParts folds consecutive duplicate "-"
// separated parts of a name.
func collapseParts(name string) string {
	parts := strings.Split(name, "-")

	kept := parts[:1]

	for _, p := range parts[1:] {
		if p == kept[len(kept)-1] {
			continue
		}

		kept = append(kept, p)
	}

	return strings.Join(kept, "-")
}
