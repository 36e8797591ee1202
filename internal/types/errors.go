package types

import "errors"

// Terminal failure conditions of the reconfiguration procedure. Each one stops
// the run without touching the live interface; the next boot re-evaluates from
// scratch.
var (
	// ErrNoActiveInterface means no network interface qualified as active.
	ErrNoActiveInterface = errors.New("no active network interface found")

	// ErrAmbiguousInterface means more than one interface qualified as active.
	// The procedure is defined only for single-homed hosts.
	ErrAmbiguousInterface = errors.New("more than one active network interface found")

	// ErrNoHistoryForDrDecision means a DR override exists but no previous
	// snapshot does, so the failover direction cannot be determined.
	ErrNoHistoryForDrDecision = errors.New("dr override present but no previous snapshot to decide direction")

	// ErrUnknownPreviousState means the previous snapshot matches neither the
	// production config nor the DR override.
	ErrUnknownPreviousState = errors.New("previous snapshot matches neither production nor dr config")

	// ErrNoSavedConfig means the interface is in DHCP mode and there is no
	// saved production config to fall back to.
	ErrNoSavedConfig = errors.New("no saved production config to apply")
)
