// Package journal persists order and bot lifecycle events as an append-only
// audit trail. Stores are selected through the factory registry and fed by
// StartRecorder from the event bus. Records are never replayed on start.
package journal
