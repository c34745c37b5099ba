package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/mirrormaker/mirror/ruleset"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "rules.yaml")

	require.NoError(
		t, os.WriteFile(file, []byte(content), 0o600),
	)

	return file
}

func TestLoad_valid(t *testing.T) {
	t.Parallel()

	file := writeRules(t, `
exclude:
  - "acme/sandbox-*"
  - "acme/scratch"
rename:
  acme/widget: acme-widget-mirror
`)

	r, err := ruleset.Load(file)

	require.NoError(t, err)
	assert.True(t, r.Excluded("acme/sandbox-1"))
	assert.True(t, r.Excluded("acme/scratch"))
	assert.False(t, r.Excluded("acme/widget"))

	name, ok := r.TargetName("acme/widget")
	assert.True(t, ok)
	assert.Equal(t, "acme-widget-mirror", name)

	_, ok = r.TargetName("acme/other")
	assert.False(t, ok)
}

func TestLoad_missing_file(t *testing.T) {
	t.Parallel()

	r, err := ruleset.Load(
		filepath.Join(t.TempDir(), "absent.yaml"),
	)

	assert.Nil(t, r)
	assert.ErrorContains(t, err, "loading rules file")
}

func TestLoad_bad_yaml(t *testing.T) {
	t.Parallel()

	file := writeRules(t, "exclude: {no")

	r, err := ruleset.Load(file)

	assert.Nil(t, r)
	assert.ErrorContains(t, err, "parse yaml")
}

func TestLoad_bad_pattern(t *testing.T) {
	t.Parallel()

	file := writeRules(t, `
exclude:
  - "acme/[broken"
`)

	r, err := ruleset.Load(file)

	assert.Nil(t, r)
	assert.ErrorContains(t, err, "bad pattern")
}

func TestNilRules_match_nothing(t *testing.T) {
	t.Parallel()

	var r *ruleset.Rules

	assert.False(t, r.Excluded("acme/widget"))

	_, ok := r.TargetName("acme/widget")
	assert.False(t, ok)
}
