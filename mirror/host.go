package mirror

import "context"

// Pattern: Strategy -- swap hosting platform without
// changing reconciliation logic.

// SourceHost lists repositories and manages push
// mirrors on the source platform.
type SourceHost interface {
	// CurrentUser returns the username of the
	// authenticated account.
	CurrentUser(ctx context.Context) (string, error)

	// ListRepositories returns all non-forked
	// repositories owned by the authenticated user
	// matching the filter.
	ListRepositories(
		ctx context.Context,
		filter RepoFilter,
	) ([]SourceRepository, error)

	// GetRepository returns one repository by its
	// full path ("namespace/name").
	GetRepository(
		ctx context.Context,
		path string,
	) (SourceRepository, error)

	// ListMirrors returns the push mirrors configured
	// on the repository with the given project ID.
	ListMirrors(
		ctx context.Context,
		projectID int64,
	) ([]Mirror, error)

	// CreateMirror registers a new enabled push
	// mirror pointing at pushURL.
	CreateMirror(
		ctx context.Context,
		projectID int64,
		pushURL string,
	) (Mirror, error)

	// DeleteMirror removes one configured push
	// mirror.
	DeleteMirror(
		ctx context.Context,
		projectID int64,
		mirrorID int64,
	) error

	// SettingsURL returns a link to the repository
	// mirroring settings page.
	SettingsURL(repo SourceRepository) string
}

// TargetHost manages mirror repositories on the target
// platform.
type TargetHost interface {
	// Owner returns the user or organisation under
	// which mirror repositories are created.
	Owner() string

	// ListRepositories returns all non-forked
	// repositories owned by Owner.
	ListRepositories(
		ctx context.Context,
	) ([]TargetRepository, error)

	// FindRepository returns the repository with the
	// given name, or nil without error when it does
	// not exist.
	FindRepository(
		ctx context.Context,
		name string,
	) (*TargetRepository, error)

	// CreateRepository creates a repository. A
	// conflict with a concurrently created repository
	// of the same name is resolved by re-reading it.
	CreateRepository(
		ctx context.Context,
		req NewRepository,
	) (TargetRepository, error)

	// UpdateRepository patches the metadata of an
	// existing repository.
	UpdateRepository(
		ctx context.Context,
		name string,
		req NewRepository,
	) (TargetRepository, error)

	// DeleteRepository removes a repository. Deleting
	// an absent repository is not an error.
	DeleteRepository(
		ctx context.Context,
		name string,
	) error

	// PushURL returns the authenticated clone URL the
	// source platform pushes to for the named
	// repository.
	PushURL(name string) string
}
