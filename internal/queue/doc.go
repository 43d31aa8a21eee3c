// Package queue implements the filesystem-backed job queue. A job is a
// document identified by its stem, and its state is its directory: intake/,
// in-flight/, or archived/. Every transition is a single atomic rename so
// any number of worker processes sharing the filesystem can run safely
// without a coordination service. Rename failures caused by another worker
// winning the race are contention signals, not errors.
package queue
