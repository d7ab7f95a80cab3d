// Package events publishes task lifecycle events.
//
// Services emit a TaskEvent after each committed change without knowing who
// listens. Handlers register with an EventEmitter; the in-memory emitter
// dispatches synchronously, and LoggingHandler keeps an audit trail in the
// structured log.
package events
