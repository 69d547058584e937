package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/reposync/config"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    config.File
		wantErr bool
	}{
		{
			name:  "empty yields defaults",
			input: "",
			want:  config.Default(),
		},
		{
			name: "all fields",
			input: "git: /usr/local/bin/git\n" +
				"max_count: 50\n" +
				"author: \"y\"\n" +
				"author_format: '{{name}} (sync) <{{email}}>'\n",
			want: config.File{
				Git:          "/usr/local/bin/git",
				MaxCount:     50,
				Author:       "y",
				AuthorFormat: "{{name}} (sync) <{{email}}>",
			},
		},
		{
			name:  "partial keeps defaults",
			input: "author: Jane <jane@example.com>\n",
			want: config.File{
				Git:          "git",
				MaxCount:     1000,
				Author:       "Jane <jane@example.com>",
				AuthorFormat: "{{name}} <{{email}}>",
			},
		},
		{
			name:    "unknown key",
			input:   "colour: blue\n",
			wantErr: true,
		},
		{
			name:    "negative max count",
			input:   "max_count: -3\n",
			wantErr: true,
		},
		{
			name:    "wrong type",
			input:   "max_count: lots\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := config.Parse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_explicit_path(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(
		t, os.WriteFile(path, []byte("max_count: 7\n"), 0o600),
	)

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.MaxCount)
	assert.Equal(t, "git", got.Git)
}

func TestLoad_explicit_path_missing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(
		filepath.Join(t.TempDir(), "absent.yaml"),
	)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

//nolint:paralleltest // mutates XDG environment
func TestLoad_xdg_search(t *testing.T) {
	// Registered first so it runs after the env is
	// restored.
	t.Cleanup(xdg.Reload)

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()

	got, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), got)

	dir := filepath.Join(home, "reposync")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(
		t, os.WriteFile(
			filepath.Join(dir, "config.yaml"),
			[]byte("author: \"y\"\n"), 0o600,
		),
	)

	got, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "y", got.Author)
}
