// Package repositories implements SQLite persistence for floodjoin's history.
//
// Key Implementations:
//   - [JoinAttemptRepository] : Join attempt history with run and channel lookups
//   - [AttemptRecorder] : Adapter that lets the join engine record outcomes
//
// Deletes are soft (deleted_at) and deleted rows are excluded from queries.
// [NextSequence] numbers join attempts from a single-row counter table.
package repositories
