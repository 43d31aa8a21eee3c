// Package logging wires log/slog with the console and JSON handlers used by
// every presswork component. Components receive a logger tagged with a
// "component" attribute; batch runs add a run_id for correlation.
package logging
