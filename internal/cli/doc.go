// Package cli wires the cobra command tree: sync, streams, init, config,
// and version. Commands stay thin; resolution and execution live in the
// resolve and syncer packages.
package cli
