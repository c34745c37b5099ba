package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/mirrormaker/mirror"
)

// listPageSize is the per-page size used when walking
// paginated project listings.
const listPageSize = 100

// Config holds the settings needed to create a GitLab
// source host.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// AccessToken is a personal access token used for
	// authentication. Requires the api scope.
	AccessToken string
}

// Source lists projects and manages push mirrors on a
// GitLab instance.
//
// Pattern: Strategy -- implements mirror.SourceHost.
type Source struct {
	client *gl.Client
}

// NewSource validates cfg and returns a Source ready to
// query the GitLab API.
func NewSource(cfg Config) (*Source, error) {
	const errCtx = "creating gitlab source"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Source{client: client}, nil
}

// CurrentUser returns the username of the authenticated
// GitLab account.
func (s *Source) CurrentUser(
	ctx context.Context,
) (string, error) {
	const errCtx = "getting gitlab user"

	user, resp, err := s.client.Users.CurrentUser(
		gl.WithContext(ctx),
	)
	if err != nil {
		return "", mirror.FromResponse(
			errCtx, "user", httpResponse(resp), err,
		)
	}

	return user.Username, nil
}

// ListRepositories returns all non-forked projects
// owned by the authenticated user matching the filter,
// following pagination until exhausted.
func (s *Source) ListRepositories(
	ctx context.Context,
	filter mirror.RepoFilter,
) ([]mirror.SourceRepository, error) {
	const errCtx = "listing gitlab projects"

	opts := &gl.ListProjectsOptions{
		Owned: gl.Ptr(true),
		ListOptions: gl.ListOptions{
			PerPage: listPageSize,
		},
	}

	// Sending archived=false excludes archived
	// projects; omitting the parameter returns all.
	if !filter.IncludeArchived {
		opts.Archived = gl.Ptr(false)
	}

	if filter.Visibility != "" {
		opts.Visibility = gl.Ptr(
			gl.VisibilityValue(filter.Visibility),
		)
	}

	var repos []mirror.SourceRepository

	for {
		projects, resp, err := s.client.Projects.ListProjects(
			opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, mirror.FromResponse(
				errCtx,
				"projects",
				httpResponse(resp),
				err,
			)
		}

		for _, p := range projects {
			if p.ForkedFromProject != nil {
				continue
			}

			repos = append(repos, toRepository(p))
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	slog.Debug(
		"listed gitlab projects",
		"count", len(repos),
	)

	return repos, nil
}

// GetRepository returns one project by its full path
// ("namespace/name").
func (s *Source) GetRepository(
	ctx context.Context,
	path string,
) (mirror.SourceRepository, error) {
	const errCtx = "getting gitlab project"

	project, resp, err := s.client.Projects.GetProject(
		path, nil, gl.WithContext(ctx),
	)
	if err != nil {
		return mirror.SourceRepository{},
			mirror.FromResponse(
				errCtx, path, httpResponse(resp), err,
			)
	}

	return toRepository(project), nil
}

// ListMirrors returns the push mirrors configured on
// the project.
func (s *Source) ListMirrors(
	ctx context.Context,
	projectID int64,
) ([]mirror.Mirror, error) {
	const errCtx = "listing gitlab push mirrors"

	configured, resp, err := s.client.ProjectMirrors.ListProjectMirror(
		projectID, nil, gl.WithContext(ctx),
	)
	if err != nil {
		return nil, mirror.FromResponse(
			errCtx,
			fmt.Sprintf("project %d", projectID),
			httpResponse(resp),
			err,
		)
	}

	mirrors := make([]mirror.Mirror, 0, len(configured))

	for _, m := range configured {
		mirrors = append(mirrors, mirror.Mirror{
			ID:      m.ID,
			URL:     m.URL,
			Enabled: m.Enabled,
		})
	}

	return mirrors, nil
}

// CreateMirror registers a new enabled push mirror
// pointing at pushURL.
func (s *Source) CreateMirror(
	ctx context.Context,
	projectID int64,
	pushURL string,
) (mirror.Mirror, error) {
	const errCtx = "creating gitlab push mirror"

	created, resp, err := s.client.ProjectMirrors.AddProjectMirror(
		projectID,
		&gl.AddProjectMirrorOptions{
			URL:     gl.Ptr(pushURL),
			Enabled: gl.Ptr(true),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return mirror.Mirror{}, mirror.FromResponse(
			errCtx,
			fmt.Sprintf("project %d", projectID),
			httpResponse(resp),
			err,
		)
	}

	slog.Info(
		"created push mirror",
		"project", projectID,
		"url", created.URL,
	)

	return mirror.Mirror{
		ID:      created.ID,
		URL:     created.URL,
		Enabled: created.Enabled,
	}, nil
}

// DeleteMirror removes one configured push mirror.
func (s *Source) DeleteMirror(
	ctx context.Context,
	projectID int64,
	mirrorID int64,
) error {
	const errCtx = "deleting gitlab push mirror"

	resp, err := s.client.ProjectMirrors.DeleteProjectMirror(
		projectID, mirrorID, gl.WithContext(ctx),
	)
	if err != nil {
		return mirror.FromResponse(
			errCtx,
			fmt.Sprintf(
				"project %d mirror %d",
				projectID, mirrorID,
			),
			httpResponse(resp),
			err,
		)
	}

	slog.Info(
		"deleted push mirror",
		"project", projectID,
		"mirror", mirrorID,
	)

	return nil
}

// SettingsURL returns the repository mirroring settings
// page for a project.
func (s *Source) SettingsURL(
	repo mirror.SourceRepository,
) string {
	return repo.WebURL + "/-/settings/repository"
}

// toRepository converts a GitLab project into the
// platform-neutral representation.
func toRepository(
	p *gl.Project,
) mirror.SourceRepository {
	return mirror.SourceRepository{
		ID:                p.ID,
		PathWithNamespace: p.PathWithNamespace,
		Name:              p.Path,
		Description:       p.Description,
		Visibility:        string(p.Visibility),
		Archived:          p.Archived,
		Fork:              p.ForkedFromProject != nil,
		WebURL:            p.WebURL,
		HTTPCloneURL:      p.HTTPURLToRepo,
	}
}

// httpResponse unwraps the embedded http.Response for
// error classification. resp is nil on transport
// failures.
func httpResponse(resp *gl.Response) *http.Response {
	if resp == nil {
		return nil
	}

	return resp.Response
}
