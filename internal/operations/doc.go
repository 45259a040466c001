// Package operations orchestrates consolidation runs as multi-step
// operations executed on a background worker.
//
// An operation is built from registered steps (scan, consolidate, export)
// that run sequentially, each with its own timeout and retry policy. All
// status changes flow through the StatusBroadcaster, which publishes
// complete snapshots over the WebSocket hub so the front end never merges
// partial updates.
package operations
