// Package report renders a reconciliation summary for
// humans (aligned text table) or machines (JSON).
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/mirrormaker/mirror/reconcile"
)

// WriteTable renders the summary as an aligned text
// table followed by a one-line count footer.
func WriteTable(
	w io.Writer,
	s *reconcile.Summary,
) error {
	const errCtx = "writing summary table"

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	withSync := false

	for _, o := range s.Outcomes {
		if o.SyncURL != "" {
			withSync = true

			break
		}
	}

	header := "GITLAB REPO\tVISIBILITY\tARCHIVED\t" +
		"GITHUB REPO\tACTION"
	if withSync {
		header += "\tSYNC"
	}

	fmt.Fprintln(tw, header)

	for _, o := range s.Outcomes {
		action := string(o.Action)
		if o.RepoCreated {
			action += " (repo created)"
		}

		if o.RepoUpdated {
			action += " (repo updated)"
		}

		if o.Reason != "" {
			action += ": " + o.Reason
		}

		row := fmt.Sprintf(
			"%s\t%s\t%v\t%s\t%s",
			o.Path,
			o.Visibility,
			o.Archived,
			o.TargetName,
			action,
		)
		if withSync {
			row += "\t" + o.SyncURL
		}

		fmt.Fprintln(tw, row)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fmt.Fprintf(
		w,
		"\n%d repositories: %d mirrors created, "+
			"%d existing, %d skipped, %d failed\n",
		len(s.Outcomes),
		s.Count(reconcile.ActionMirrorCreated),
		s.Count(reconcile.ActionMirrorExists),
		s.Count(reconcile.ActionSkipped),
		s.Count(reconcile.ActionFailed),
	)

	if n := s.Count(
		reconcile.ActionTornDown,
	); n > 0 {
		fmt.Fprintf(w, "%d torn down\n", n)
	}

	if s.DryRun {
		fmt.Fprintln(
			w,
			"dry run: no changes were made",
		)
	}

	return nil
}

// WriteJSON renders the summary as indented JSON.
func WriteJSON(
	w io.Writer,
	s *reconcile.Summary,
) error {
	const errCtx = "writing summary json"

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
