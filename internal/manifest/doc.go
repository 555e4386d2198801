// Package manifest decodes the agent publication manifest into a single
// normalized model. The document carries two schema generations (a nested
// mapping of value streams to agents, and a flat list of agent records),
// detected structurally at parse time so downstream code never branches on
// schema shape. Raw documents are validated against an embedded JSON schema
// before decoding.
package manifest
