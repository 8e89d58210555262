/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package fixedwindow provides a lock-free fixed-window rate limiter with independent
// read and write budgets.
//
// The limiter keeps two acquisition counters and a window-start timestamp, all held in
// atomics. Every public operation first rolls the window if it has expired: the caller
// whose compare-and-set on the window-start timestamp succeeds zeroes both counters,
// all other callers proceed with the window that caller established. The hot path
// never takes a lock and never blocks.
//
// A denied acquisition keeps the increment that pushed the counter over the limit, so
// under contention the counter may transiently exceed the limit by up to the number of
// goroutines that raced past the pre-increment check. The number of granted
// acquisitions per window is still bounded by the limit.
//
// Key features:
//   - Independent budgets for read and write acquisitions
//   - Fixed-window counting with CAS-elected single window resetter
//   - Non-blocking, constant-time operations with no error paths
//   - Prometheus metrics for grants, denials, and window rollovers
//   - Configuration loading via the go-appkit config layer
package fixedwindow
