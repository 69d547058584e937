// Package config loads reposync settings from a YAML file. Without an
// explicit path the file is looked up as reposync/config.yaml in the XDG
// config directories; command-line flags override whatever it sets.
package config
