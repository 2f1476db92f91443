// Package monitor implements the per-component polling tasks that advance
// the status store against the externally observed cluster.
//
// Two protocols share one two-phase state machine: subscription monitors
// wait for an OLM install intent to appear and then for its CSV to settle,
// application monitors wait for a sync unit to appear and then for it to
// report Synced and Healthy. Timeouts are always per phase. Every monitor
// observes the shared cancellation signal at each poll-interval boundary.
package monitor
