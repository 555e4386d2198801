// Package config manages user-level settings stored at ~/.agentsync/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the source repository URL and the default manifest filename.
package config
