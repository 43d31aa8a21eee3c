// Package weasyprint adapts the weasyprint rendering engine as an external
// collaborator: one opaque conversion per job, input path in, rendered bytes
// out. Failures are typed and never retried here; retry policy belongs to
// the orchestrator.
package weasyprint
