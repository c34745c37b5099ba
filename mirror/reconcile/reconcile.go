package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/byte4ever/mirrormaker/mirror"
	"github.com/byte4ever/mirrormaker/mirror/naming"
	"github.com/byte4ever/mirrormaker/mirror/ruleset"
)

// Config holds all settings for a reconciliation run.
// Use a Config struct instead of many arguments.
type Config struct {
	// Source is the platform the repositories live on.
	Source mirror.SourceHost

	// Target is the platform the mirrors are created
	// on.
	Target mirror.TargetHost

	// Repo restricts the run to a single repository,
	// given as "namespace/name" or a bare name under
	// the authenticated user. Empty means all owned
	// repositories.
	Repo string

	// Filter selects the candidate set when Repo is
	// empty.
	Filter mirror.RepoFilter

	// Naming controls target name derivation.
	Naming naming.Options

	// Rules holds optional per-repository overrides.
	// May be nil.
	Rules *ruleset.Rules

	// DryRun plans the run without issuing any
	// mutating call.
	DryRun bool

	// UpdateExisting patches target repositories
	// whose description or homepage diverged from the
	// source.
	UpdateExisting bool

	// DeleteMirrors removes configured push mirrors
	// instead of creating them.
	DeleteMirrors bool

	// DeleteTarget removes the target repositories.
	// Implies nothing about DeleteMirrors; both can
	// be combined for a full teardown.
	DeleteTarget bool

	// PrintSync includes a link to the source
	// mirroring settings page in each outcome.
	PrintSync bool
}

// Action is the per-repository outcome of a run.
type Action string

// Possible outcomes.
const (
	ActionMirrorCreated Action = "mirror created"
	ActionMirrorExists  Action = "mirror exists"
	ActionSkipped       Action = "skipped"
	ActionTornDown      Action = "torn down"
	ActionFailed        Action = "failed"
)

// Outcome records what happened (or, in a dry run,
// what would happen) to one repository.
type Outcome struct {
	// Path is the source repository path.
	Path string `json:"path"`

	// Visibility is the source visibility level.
	Visibility string `json:"visibility"`

	// Archived reports whether the source repository
	// is archived.
	Archived bool `json:"archived"`

	// TargetName is the derived target repository
	// name.
	TargetName string `json:"target,omitempty"`

	// Action is the outcome.
	Action Action `json:"action"`

	// RepoCreated reports whether the target
	// repository was (or would be) created.
	RepoCreated bool `json:"repo_created,omitempty"`

	// RepoUpdated reports whether drifted target
	// metadata was (or would be) patched.
	RepoUpdated bool `json:"repo_updated,omitempty"`

	// Reason explains a skip or a failure.
	Reason string `json:"reason,omitempty"`

	// SyncURL links to the source mirroring settings
	// page when requested.
	SyncURL string `json:"sync_url,omitempty"`
}

// Summary is the result of one run, sorted by
// repository path. Not persisted across runs.
type Summary struct {
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"results"`
}

// Count returns the number of outcomes with the given
// action.
func (s *Summary) Count(action Action) int {
	n := 0

	for _, o := range s.Outcomes {
		if o.Action == action {
			n++
		}
	}

	return n
}

// Run executes one reconciliation pass. Per-repository
// failures are recorded in the summary and do not stop
// the run; authentication failures abort it.
func Run(
	ctx context.Context,
	cfg Config,
) (*Summary, error) {
	const errCtx = "reconciling mirrors"

	if cfg.Source == nil || cfg.Target == nil {
		return nil, fmt.Errorf(
			"%s: source and target must be set", errCtx,
		)
	}

	candidates, err := selectCandidates(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: select candidates: %w", errCtx, err,
		)
	}

	summary := &Summary{DryRun: cfg.DryRun}

	if len(candidates) == 0 {
		slog.Info("no repositories selected")

		return summary, nil
	}

	// One inventory of the target side up front; per
	// repository lookups would multiply API calls.
	targets, err := cfg.Target.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: list target repositories: %w",
			errCtx, err,
		)
	}

	byName := indexByName(targets)

	for _, repo := range candidates {
		out, repoErr := reconcileOne(
			ctx, cfg, repo, byName,
		)
		if repoErr != nil {
			return nil, fmt.Errorf(
				"%s: %s: %w",
				errCtx,
				repo.PathWithNamespace,
				repoErr,
			)
		}

		summary.Outcomes = append(summary.Outcomes, out)
	}

	sort.Slice(summary.Outcomes, func(i, j int) bool {
		return summary.Outcomes[i].Path <
			summary.Outcomes[j].Path
	})

	return summary, nil
}

// selectCandidates builds the candidate set: one
// explicitly named repository, or all owned non-forked
// repositories matching the filter, minus rule
// exclusions.
func selectCandidates(
	ctx context.Context,
	cfg Config,
) ([]mirror.SourceRepository, error) {
	if cfg.Repo != "" {
		path := cfg.Repo

		if !strings.Contains(path, "/") {
			// Bare names live under the authenticated
			// user's namespace.
			user, err := cfg.Source.CurrentUser(ctx)
			if err != nil {
				return nil, err
			}

			path = user + "/" + path
		}

		repo, err := cfg.Source.GetRepository(ctx, path)
		if err != nil {
			return nil, err
		}

		return []mirror.SourceRepository{repo}, nil
	}

	repos, err := cfg.Source.ListRepositories(
		ctx, cfg.Filter,
	)
	if err != nil {
		return nil, err
	}

	kept := repos[:0]

	for _, repo := range repos {
		if repo.Fork {
			continue
		}

		if cfg.Rules.Excluded(repo.PathWithNamespace) {
			slog.Debug(
				"excluded by rules",
				"repo", repo.PathWithNamespace,
			)

			continue
		}

		kept = append(kept, repo)
	}

	return kept, nil
}

// reconcileOne converges a single repository. The
// returned error is non-nil only for failures that must
// abort the whole run.
func reconcileOne(
	ctx context.Context,
	cfg Config,
	repo mirror.SourceRepository,
	byName map[string]mirror.TargetRepository,
) (Outcome, error) {
	out := Outcome{
		Path:       repo.PathWithNamespace,
		Visibility: repo.Visibility,
		Archived:   repo.Archived,
	}

	if cfg.PrintSync {
		out.SyncURL = cfg.Source.SettingsURL(repo)
	}

	if repo.IsMirror() {
		out.Action = ActionSkipped
		out.Reason = "repository is itself a mirror"

		return out, nil
	}

	name := targetName(cfg, repo)
	out.TargetName = name

	if cfg.DeleteMirrors || cfg.DeleteTarget {
		return teardownOne(ctx, cfg, repo, name, out)
	}

	existing, found := byName[strings.ToLower(name)]

	switch {
	case !found:
		out.RepoCreated = true

		if cfg.DryRun {
			break
		}

		created, err := cfg.Target.CreateRepository(
			ctx, newRepository(repo, name),
		)
		if err != nil {
			return fail(out, err)
		}

		existing = created

	case cfg.UpdateExisting &&
		drifted(existing, repo, name):
		out.RepoUpdated = true

		if cfg.DryRun {
			break
		}

		updated, err := cfg.Target.UpdateRepository(
			ctx, name, newRepository(repo, name),
		)
		if err != nil {
			return fail(out, err)
		}

		existing = updated
	}

	fullName := existing.FullName
	if fullName == "" {
		fullName = cfg.Target.Owner() + "/" + name
	}

	mirrors, err := cfg.Source.ListMirrors(ctx, repo.ID)
	if err != nil {
		return fail(out, err)
	}

	if hasMirror(mirrors, fullName) {
		out.Action = ActionMirrorExists

		return out, nil
	}

	if !cfg.DryRun {
		if _, err := cfg.Source.CreateMirror(
			ctx, repo.ID, cfg.Target.PushURL(name),
		); err != nil {
			return fail(out, err)
		}
	}

	out.Action = ActionMirrorCreated

	return out, nil
}

// teardownOne removes mirrors pointing at the target
// and, when requested, the target repository itself.
func teardownOne(
	ctx context.Context,
	cfg Config,
	repo mirror.SourceRepository,
	name string,
	out Outcome,
) (Outcome, error) {
	fullName := cfg.Target.Owner() + "/" + name
	removed := 0

	if cfg.DeleteMirrors {
		mirrors, err := cfg.Source.ListMirrors(
			ctx, repo.ID,
		)
		if err != nil {
			return fail(out, err)
		}

		for _, m := range mirrors {
			if !m.PointsAt(fullName) {
				continue
			}

			if !cfg.DryRun {
				if err := cfg.Source.DeleteMirror(
					ctx, repo.ID, m.ID,
				); err != nil {
					return fail(out, err)
				}
			}

			removed++
		}
	}

	if cfg.DeleteTarget && !cfg.DryRun {
		if err := cfg.Target.DeleteRepository(
			ctx, name,
		); err != nil {
			return fail(out, err)
		}
	}

	if removed == 0 && !cfg.DeleteTarget {
		out.Action = ActionSkipped
		out.Reason = "no mirrors to remove"

		return out, nil
	}

	out.Action = ActionTornDown

	return out, nil
}

// fail records a per-repository failure, unless the
// error is fatal to the whole run.
func fail(out Outcome, err error) (Outcome, error) {
	if mirror.IsAuth(err) {
		return out, err
	}

	slog.Warn(
		"repository reconciliation failed",
		"repo", out.Path,
		"error", err,
	)

	out.Action = ActionFailed
	out.Reason = err.Error()

	return out, nil
}

// targetName derives the target repository name,
// preferring an explicit rename override.
func targetName(
	cfg Config,
	repo mirror.SourceRepository,
) string {
	if name, ok := cfg.Rules.TargetName(
		repo.PathWithNamespace,
	); ok {
		return name
	}

	return naming.TargetName(
		repo.PathWithNamespace, cfg.Naming,
	)
}

// newRepository builds the target creation request for
// a source repository. Internal visibility becomes
// private on the target.
func newRepository(
	repo mirror.SourceRepository,
	name string,
) mirror.NewRepository {
	return mirror.NewRepository{
		Name: name,
		Description: mirror.MarkDescription(
			repo.Description,
		),
		Homepage: repo.WebURL,
		Private: repo.Visibility !=
			mirror.VisibilityPublic,
		Archived: repo.Archived,
	}
}

// drifted reports whether the existing target metadata
// no longer matches the source.
func drifted(
	existing mirror.TargetRepository,
	repo mirror.SourceRepository,
	name string,
) bool {
	want := newRepository(repo, name)

	return existing.Description != want.Description ||
		existing.Homepage != want.Homepage ||
		existing.Private != want.Private
}

// hasMirror reports whether any configured mirror
// already points at the target repository.
func hasMirror(
	mirrors []mirror.Mirror,
	fullName string,
) bool {
	for _, m := range mirrors {
		if m.PointsAt(fullName) {
			return true
		}
	}

	return false
}

// indexByName indexes target repositories by
// lower-cased name; the platform treats names
// case-insensitively.
func indexByName(
	targets []mirror.TargetRepository,
) map[string]mirror.TargetRepository {
	byName := make(
		map[string]mirror.TargetRepository,
		len(targets),
	)

	for _, t := range targets {
		byName[strings.ToLower(t.Name)] = t
	}

	return byName
}
