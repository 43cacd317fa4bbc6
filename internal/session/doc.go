// Package session implements the in-memory study session engine: the
// per-session state machine (frozen queue, running stats, lifecycle),
// the registry that owns live sessions and enforces their retention
// windows, and the background reaper that releases abandoned ones.
// Sessions are deliberately ephemeral; only review outcomes are written
// through to durable storage.
package session
