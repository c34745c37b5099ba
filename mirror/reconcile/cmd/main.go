// Command mirrormaker sets up mirroring of repositories
// from GitLab to GitHub: it discovers the authenticated
// user's GitLab projects, ensures a matching GitHub
// repository exists for each, and configures a GitLab
// push mirror pointing at it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/byte4ever/mirrormaker/mirror"
	"github.com/byte4ever/mirrormaker/mirror/github"
	"github.com/byte4ever/mirrormaker/mirror/gitlab"
	"github.com/byte4ever/mirrormaker/mirror/naming"
	"github.com/byte4ever/mirrormaker/mirror/reconcile"
	"github.com/byte4ever/mirrormaker/mirror/report"
	"github.com/byte4ever/mirrormaker/mirror/ruleset"
)

// envPrefix is the prefix of the environment variables
// mirroring every flag (--github-token becomes
// MIRRORMAKER_GITHUB_TOKEN).
const envPrefix = "MIRRORMAKER"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// options collects every flag value.
type options struct {
	githubToken        string
	githubUser         string
	githubOrg          string
	githubEnterprise   string
	githubStrip        []string
	githubNamespaces   bool
	githubNoDuplicates bool
	pushURLTemplate    string

	gitlabToken   string
	gitlabAPI     string
	gitlabPrivate bool
	gitlabArchive bool

	dryRun           bool
	deleteMirrors    bool
	deleteFromGithub bool
	noUpdate         bool
	printSync        bool
	output           string
	rulesFile        string
	verbose          bool
}

//nolint:funlen // CLI flag setup is inherently long
func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mirrormaker [repo]",
		Short: "Set up mirroring of repositories from GitLab to GitHub",
		Long: `Set up mirroring of repositories from GitLab to GitHub.

By default, mirrors for all repositories owned by the authenticated
user are set up. When REPO is given, only that repository is
reconciled; REPO is either a project name ("myproject") whose
namespace is assumed to be the current user, or a full project path
("mynamespace/myproject").

Every flag can also be set through an environment variable with the
MIRRORMAKER_ prefix (e.g. MIRRORMAKER_GITHUB_TOKEN).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindEnv(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := ""
			if len(args) == 1 {
				repo = args[0]
			}

			return run(cmd.Context(), opts, repo)
		},
	}

	fl := cmd.Flags()

	// GitHub flags.
	fl.StringVar(
		&opts.githubToken, "github-token", "",
		"GitHub authentication token",
	)
	fl.StringVar(
		&opts.githubUser, "github-user", "",
		"GitHub username (defaults to the GitLab "+
			"username)",
	)
	fl.StringVar(
		&opts.githubOrg, "github-org", "",
		"GitHub organisation owning the mirrors "+
			"(defaults to the personal namespace)",
	)
	fl.StringVar(
		&opts.githubEnterprise,
		"github-enterprise-host", "",
		"GitHub Enterprise hostname",
	)
	fl.StringSliceVar(
		&opts.githubStrip, "github-strip", nil,
		"Namespace parts to strip from mirror names",
	)
	fl.BoolVar(
		&opts.githubNamespaces,
		"github-namespaces", false,
		"Flatten GitLab namespaces into mirror names",
	)
	fl.BoolVar(
		&opts.githubNoDuplicates,
		"github-no-duplicates", false,
		"Collapse repeated parts in mirror names",
	)
	fl.StringVar(
		&opts.pushURLTemplate,
		"push-url-template", "",
		"Template for authenticated push URLs",
	)

	// GitLab flags.
	fl.StringVar(
		&opts.gitlabToken, "gitlab-token", "",
		"GitLab authentication token",
	)
	fl.StringVar(
		&opts.gitlabAPI, "gitlab-api", "",
		"GitLab instance URL (default "+
			"https://gitlab.com)",
	)
	fl.BoolVar(
		&opts.gitlabPrivate, "gitlab-private", false,
		"Include private and internal repositories "+
			"(internal becomes private on GitHub)",
	)
	fl.BoolVar(
		&opts.gitlabArchive, "gitlab-archive", false,
		"Include archived repositories",
	)

	// Run flags.
	fl.BoolVar(
		&opts.dryRun, "dry-run", true,
		"Report intended actions without performing "+
			"them",
	)
	fl.BoolVar(
		&opts.deleteMirrors, "delete-mirrors", false,
		"Delete push mirrors from GitLab instead of "+
			"creating them",
	)
	fl.BoolVar(
		&opts.deleteFromGithub,
		"delete-from-github", false,
		"Delete mirror repositories from GitHub",
	)
	fl.BoolVar(
		&opts.noUpdate, "no-update", false,
		"Leave drifted GitHub repository metadata "+
			"untouched",
	)
	fl.BoolVar(
		&opts.printSync, "print-sync", false,
		"Include a link to the GitLab mirror "+
			"settings page",
	)
	fl.StringVar(
		&opts.output, "output", "text",
		"Summary format: text or json",
	)
	fl.StringVar(
		&opts.rulesFile, "rules", "",
		"Path to a YAML rules file (exclude/rename)",
	)
	fl.BoolVar(
		&opts.verbose, "verbose", false,
		"Enable debug logging",
	)

	return cmd
}

// bindEnv fills unset flags from MIRRORMAKER_* environment
// variables, the same precedence the original click
// interface had: flag beats environment beats default.
func bindEnv(fl *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(
		strings.NewReplacer("-", "_"),
	)
	v.AutomaticEnv()

	var bindErr error

	fl.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed {
			return
		}

		if !v.IsSet(f.Name) {
			return
		}

		if err := fl.Set(
			f.Name, v.GetString(f.Name),
		); err != nil {
			bindErr = fmt.Errorf(
				"binding %s: %w", f.Name, err,
			)
		}
	})

	return bindErr
}

func run(
	ctx context.Context,
	opts *options,
	repo string,
) error {
	const errCtx = "running mirrormaker"

	setupLogging(opts.verbose)

	// Reject a bad --output before any API call is
	// made; finding out after the run has mutated
	// repositories is too late.
	if err := checkOutputFormat(opts.output); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	source, err := gitlab.NewSource(gitlab.Config{
		Host:        opts.gitlabAPI,
		AccessToken: opts.gitlabToken,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	githubUser := opts.githubUser
	if githubUser == "" {
		githubUser, err = source.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		slog.Info(
			"github user defaulted from gitlab account",
			"user", githubUser,
		)
	}

	target, err := github.NewTarget(github.Config{
		User:            githubUser,
		Org:             opts.githubOrg,
		AccessToken:     opts.githubToken,
		EnterpriseHost:  opts.githubEnterprise,
		PushURLTemplate: opts.pushURLTemplate,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	var rules *ruleset.Rules

	if opts.rulesFile != "" {
		rules, err = ruleset.Load(opts.rulesFile)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	visibility := mirror.VisibilityPublic
	if opts.gitlabPrivate {
		visibility = ""
	}

	summary, err := reconcile.Run(ctx, reconcile.Config{
		Source: source,
		Target: target,
		Repo:   repo,
		Filter: mirror.RepoFilter{
			Visibility:      visibility,
			IncludeArchived: opts.gitlabArchive,
		},
		Naming: naming.Options{
			KeepNamespaces:     opts.githubNamespaces,
			Strip:              opts.githubStrip,
			CollapseDuplicates: opts.githubNoDuplicates,
		},
		Rules:          rules,
		DryRun:         opts.dryRun,
		UpdateExisting: !opts.noUpdate,
		DeleteMirrors:  opts.deleteMirrors,
		DeleteTarget:   opts.deleteFromGithub,
		PrintSync:      opts.printSync,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := writeSummary(
		opts.output, summary,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if summary.DryRun {
		slog.Info(
			"dry run: re-run with --dry-run=false " +
				"to apply",
		)
	}

	// Per-repository failures are reported in the
	// summary; the run itself completed.
	return nil
}

// checkOutputFormat rejects unknown --output values.
func checkOutputFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf(
			"unknown output format %q", format,
		)
	}
}

// writeSummary renders the summary on stdout in the
// requested format.
func writeSummary(
	format string,
	summary *reconcile.Summary,
) error {
	switch format {
	case "text":
		return report.WriteTable(os.Stdout, summary)
	case "json":
		return report.WriteJSON(os.Stdout, summary)
	default:
		return fmt.Errorf(
			"unknown output format %q", format,
		)
	}
}

// setupLogging routes structured logs to stderr so the
// summary table on stdout stays machine-readable.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(
		slog.NewTextHandler(
			os.Stderr,
			&slog.HandlerOptions{Level: level},
		),
	))
}
