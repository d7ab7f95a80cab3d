// Package service contains the task lifecycle use cases. It orchestrates the
// domain aggregate and the repository (defined in terms of internal/store) to
// create, read, list, update and delete tasks and to manage their labels.
//
// Every call receives the caller's identity explicitly; the service never
// reads it from ambient state. Ownership is enforced here:
//
//   - existence is checked before ownership, so unknown IDs report
//     ErrTaskNotFound even to callers who own nothing
//   - the status guard and label validation run before anything is saved
//   - each mutating call performs one load and one save, and the store
//     persists the task and its labels atomically
//
// Storage failures are wrapped in *TaskServiceError and never retried.
// After a successful mutation an event is published through the
// events.EventEmitter; a failed emit is logged and does not fail the call.
package service
