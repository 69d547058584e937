package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/reposync/git"
	"github.com/byte4ever/reposync/history"
)

// RelPath is the location of the config file relative to
// the XDG config directories.
const RelPath = "reposync/config.yaml"

// File holds the settings read from the config file.
// Zero values mean "not set" and are replaced by
// defaults.
type File struct {
	// Git is the git binary name or path.
	Git string `yaml:"git"`

	// MaxCount caps how many commits are read from each
	// log.
	MaxCount int `yaml:"max_count"`

	// Author is the default AUTHOR argument: empty for
	// no rewrite, "y" for the source identity, or a
	// literal "name <email>". Quote "y" so YAML keeps
	// it a string.
	Author string `yaml:"author"`

	// AuthorFormat renders a resolved identity.
	AuthorFormat string `yaml:"author_format"`
}

// Default returns the built-in settings.
func Default() File {
	return File{
		Git:          "git",
		MaxCount:     history.DefaultMaxCount,
		AuthorFormat: git.DefaultIdentityFormat,
	}
}

// Load reads the config file at path. An empty path
// searches the XDG config directories for RelPath and
// returns Default when none exists; an explicit path
// must exist.
func Load(path string) (File, error) {
	const errCtx = "loading config"

	if path == "" {
		found, err := xdg.SearchConfigFile(RelPath)
		if err != nil {
			return Default(), nil
		}

		path = found
	}

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag or XDG
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, fmt.Errorf(
				"%s: %s does not exist: %w", errCtx, path, err,
			)
		}

		return File{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return Parse(data)
}

// Parse decodes YAML data and fills unset fields with
// defaults.
func Parse(data []byte) (File, error) {
	const errCtx = "parsing config"

	var f File

	if err := yaml.UnmarshalWithOptions(
		data, &f, yaml.DisallowUnknownField(),
	); err != nil {
		return File{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if f.MaxCount < 0 {
		return File{}, fmt.Errorf(
			"%s: max_count must not be negative: %d",
			errCtx, f.MaxCount,
		)
	}

	return f.withDefaults(), nil
}

func (f File) withDefaults() File {
	def := Default()

	if f.Git == "" {
		f.Git = def.Git
	}

	if f.MaxCount == 0 {
		f.MaxCount = def.MaxCount
	}

	if f.AuthorFormat == "" {
		f.AuthorFormat = def.AuthorFormat
	}

	return f
}
