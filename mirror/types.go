package mirror

import (
	"net/url"
	"strings"
)

// Visibility levels as reported by the source platform.
const (
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
	VisibilityPrivate  = "private"
)

// Marker tags a target repository description as a
// managed mirror. A source repository carrying the
// marker in its own description is never mirrored
// again.
const Marker = "[mirror]"

// SourceRepository describes one repository on the
// source platform. Fetched fresh on every run, never
// persisted.
type SourceRepository struct {
	// ID is the platform-assigned project ID.
	ID int64

	// PathWithNamespace is the full project path
	// (e.g. "acme/widget").
	PathWithNamespace string

	// Name is the project path without namespace.
	Name string

	// Description is the project description.
	Description string

	// Visibility is one of public, internal, or
	// private.
	Visibility string

	// Archived reports whether the project is
	// archived.
	Archived bool

	// Fork reports whether the project is a fork of
	// another project.
	Fork bool

	// WebURL is the browsable project URL.
	WebURL string

	// HTTPCloneURL is the HTTP clone URL.
	HTTPCloneURL string
}

// IsMirror reports whether the repository description
// carries the mirror marker, meaning the repository is
// itself a mirror managed by this tool.
func (r SourceRepository) IsMirror() bool {
	return strings.Contains(r.Description, Marker)
}

// TargetRepository describes one repository on the
// target platform. Identity key is Name, compared
// case-insensitively.
type TargetRepository struct {
	Name        string
	FullName    string
	Description string
	Homepage    string
	HTMLURL     string
	Private     bool
	Archived    bool
	Fork        bool
}

// NewRepository is a target repository creation or
// update request.
type NewRepository struct {
	Name        string
	Description string
	Homepage    string
	Private     bool
	Archived    bool
}

// Mirror is one configured push mirror on a source
// repository. The platform scrubs credentials from URL
// before returning it.
type Mirror struct {
	ID      int64
	URL     string
	Enabled bool
}

// PointsAt reports whether the mirror pushes to the
// repository fullName ("owner/name"), ignoring any
// userinfo embedded in the URL. Comparison is
// case-insensitive.
func (m Mirror) PointsAt(fullName string) bool {
	u, err := url.Parse(m.URL)
	if err != nil {
		// Scrubbed URLs are occasionally not
		// parseable; fall back to a suffix match.
		return strings.HasSuffix(
			strings.ToLower(m.URL),
			strings.ToLower("/"+fullName+".git"),
		)
	}

	p := strings.Trim(u.Path, "/")
	p = strings.TrimSuffix(p, ".git")

	return strings.EqualFold(p, fullName)
}

// RepoFilter selects which source repositories form the
// candidate set.
type RepoFilter struct {
	// Visibility restricts the set to one visibility
	// level; empty means all levels.
	Visibility string

	// IncludeArchived keeps archived repositories in
	// the set.
	IncludeArchived bool
}

// MarkDescription appends the mirror marker to a source
// description, producing the description used for the
// target repository.
func MarkDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return Marker
	}

	return desc + " " + Marker
}
