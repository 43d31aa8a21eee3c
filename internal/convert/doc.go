// Package convert drives a batch through the queue: enumerate intake, claim
// each job, render it (or skip when its output already exists), then archive
// on success or requeue on failure. Per-item faults never abort the batch.
package convert
