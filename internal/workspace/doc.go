// Package workspace bootstraps the consumer-side folder structure defined
// by the layout package and writes the per-run log artifact.
package workspace
