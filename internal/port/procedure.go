// Package port defines the primary ports (interfaces) for the application.
// This follows the Ports and Adapters (Hexagonal Architecture) pattern.
package port

import (
	"context"
)

// ReconfigurationProcedure is the primary port of the application: one
// run-to-completion pass of the DR network reconfiguration decision procedure.
// It is invoked once per boot and either completes the full
// decide-apply-snapshot sequence or aborts at the first terminal condition.
type ReconfigurationProcedure interface {
	// Run executes the procedure once. It returns one of the terminal errors
	// from the types package when the run aborts, or nil when the full
	// sequence (including the snapshot-to-previous write) completed.
	Run(ctx context.Context) error
}
