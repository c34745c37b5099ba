package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/mirrormaker/mirror/naming"
)

func TestTargetName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		path string
		opts naming.Options
		want string
	}{
		{
			name: "default keeps project name only",
			path: "acme/widget",
			opts: naming.Options{},
			want: "widget",
		},
		{
			name: "default with nested namespace",
			path: "acme/tools/widget",
			opts: naming.Options{},
			want: "widget",
		},
		{
			name: "namespaces flattened",
			path: "acme/tools/widget",
			opts: naming.Options{
				KeepNamespaces: true,
			},
			want: "acme-tools-widget",
		},
		{
			name: "strip removes namespace segment",
			path: "acme/tools/widget",
			opts: naming.Options{
				KeepNamespaces: true,
				Strip:          []string{"tools"},
			},
			want: "acme-widget",
		},
		{
			name: "strip never removes project name",
			path: "acme/widget",
			opts: naming.Options{
				KeepNamespaces: true,
				Strip:          []string{"widget"},
			},
			want: "acme-widget",
		},
		{
			name: "duplicates collapsed",
			path: "acme/acme-widget",
			opts: naming.Options{
				KeepNamespaces:     true,
				CollapseDuplicates: true,
			},
			want: "acme-widget",
		},
		{
			name: "duplicates kept without option",
			path: "acme/acme-widget",
			opts: naming.Options{
				KeepNamespaces: true,
			},
			want: "acme-acme-widget",
		},
		{
			name: "non adjacent parts untouched",
			path: "acme/widget-acme",
			opts: naming.Options{
				KeepNamespaces:     true,
				CollapseDuplicates: true,
			},
			want: "acme-widget-acme",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(
				t,
				tc.want,
				naming.TargetName(tc.path, tc.opts),
			)
		})
	}
}
