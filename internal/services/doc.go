// Package services holds the error taxonomy shared by external collaborator
// adapters (rendering engine, protection primitive) and the helpers used to
// tag failures for status classification.
package services
