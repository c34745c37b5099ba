package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOutputFormat(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkOutputFormat("text"))
	require.NoError(t, checkOutputFormat("json"))
	assert.ErrorContains(
		t,
		checkOutputFormat("jsn"),
		"unknown output format",
	)
}

func TestRun_bad_output_fails_before_any_call(
	t *testing.T,
) {
	// No tokens are configured, so any client call
	// would fail with a token error. The format error
	// winning proves the check runs first.
	err := run(
		context.Background(),
		&options{output: "jsn"},
		"",
	)

	assert.ErrorContains(t, err, "unknown output format")
}
