// Package resolve turns manifest expectations into a plan of concrete file
// operations against the source tree. Resolution is read-only and
// best-effort: artifacts the source tree lacks become warnings, never
// errors, so one stale manifest entry cannot block a whole run.
package resolve
