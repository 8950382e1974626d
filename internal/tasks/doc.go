// Package tasks orchestrates channel resolution and joining with real-time progress reporting.
//
// # Core Operations
//
// The [Joiner] interface defines the workflow:
//
//  1. [Joiner.SearchChannel] : Directory search with exact match
//     - Strips one leading "@", keeps case for the outbound query
//     - Picks the first candidate whose username matches case-insensitively
//     - Search errors are logged and reported as not found, never returned
//
//  2. [Joiner.JoinChannel] / [Joiner.Join] : Resolve and join
//     - Direct lookup first; any lookup error falls back to SearchChannel
//     - Search finding nothing is escalated to shared.ErrChannelNotFound
//     - Join request on the resolved entity
//     - Every failure ends as false (JoinChannel) or an outcome with Err set (Join)
//
//  3. [Joiner.JoinAll] : Sequential batch of joins
//     - Waits on a golang.org/x/time/rate limiter before each join
//     - Context cancellation fails the remaining names
//
// There is no retry, backoff or sleep inside a single join. FLOOD_WAIT errors from the direct lookup are
// logged with their duration and then handled like any other lookup failure.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, batch position, messages, and optional data for advanced UI rendering.
//
// # Attempt History
//
// The optional [AttemptRecorder] interface receives every outcome. Recorder errors are logged and ignored.
package tasks
