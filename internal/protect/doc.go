// Package protect re-processes a completed output set into a parallel
// password-protected set. One credential is generated per run, persisted
// before any item is dispatched, and shared read-only by a bounded worker
// pool. Already-protected inputs are copied through unchanged so re-running
// the pipeline is idempotent.
package protect
