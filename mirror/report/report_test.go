package report_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/mirrormaker/mirror/reconcile"
	"github.com/byte4ever/mirrormaker/mirror/report"
)

func sampleSummary() *reconcile.Summary {
	return &reconcile.Summary{
		Outcomes: []reconcile.Outcome{
			{
				Path:        "acme/gadget",
				Visibility:  "public",
				TargetName:  "gadget",
				Action:      reconcile.ActionMirrorExists,
			},
			{
				Path:        "acme/widget",
				Visibility:  "public",
				TargetName:  "widget",
				Action:      reconcile.ActionMirrorCreated,
				RepoCreated: true,
			},
			{
				Path:       "acme/zulu",
				Visibility: "private",
				Archived:   true,
				TargetName: "zulu",
				Action:     reconcile.ActionFailed,
				Reason:     "network: timeout",
			},
		},
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	require.NoError(
		t, report.WriteTable(&buf, sampleSummary()),
	)

	out := buf.String()

	assert.Contains(t, out, "GITLAB REPO")
	assert.Contains(t, out, "acme/widget")
	assert.Contains(t, out, "mirror created (repo created)")
	assert.Contains(t, out, "mirror exists")
	assert.Contains(t, out, "failed: network: timeout")
	assert.Contains(
		t,
		out,
		"3 repositories: 1 mirrors created, "+
			"1 existing, 0 skipped, 1 failed",
	)
	assert.NotContains(t, out, "SYNC")
	assert.NotContains(t, out, "dry run")
}

func TestWriteTable_dry_run_and_sync(t *testing.T) {
	t.Parallel()

	s := sampleSummary()
	s.DryRun = true
	s.Outcomes[0].SyncURL = "https://gitlab.com/acme/" +
		"gadget/-/settings/repository"

	var buf strings.Builder

	require.NoError(t, report.WriteTable(&buf, s))

	out := buf.String()

	assert.Contains(t, out, "SYNC")
	assert.Contains(t, out, "/-/settings/repository")
	assert.Contains(t, out, "dry run: no changes were made")
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	require.NoError(
		t, report.WriteJSON(&buf, sampleSummary()),
	)

	var decoded reconcile.Summary

	require.NoError(t, json.Unmarshal(
		[]byte(buf.String()), &decoded,
	))

	require.Len(t, decoded.Outcomes, 3)
	assert.Equal(
		t,
		reconcile.ActionMirrorCreated,
		decoded.Outcomes[1].Action,
	)
	assert.True(t, decoded.Outcomes[1].RepoCreated)
}
