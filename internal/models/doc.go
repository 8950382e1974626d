// Package models defines domain entities and persistence interfaces for floodjoin.
//
// The package contains two categories of types:
//
// 1. Transient values: created and discarded within a single join call chain
//   - [EntityRef] : Opaque handle to a resolvable channel, chat or user
//   - [Candidate] : A channel returned by direct lookup or directory search
//   - [Resolution] : Result of resolving a name, found or not found
//   - [JoinOutcome] : Result of a whole join attempt
//
// 2. Persistent entities
//   - [JoinAttempt] : One recorded join attempt, kept for the history command
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
package models
