// Package failover implements the DR network reconfiguration decision
// procedure: one run per boot that decides between production and DR
// addressing, applies at most one reconfiguration, and snapshots the result.
package failover

import (
	"context"
	"fmt"

	"dr-ipconfig/internal/adapter/store"
	"dr-ipconfig/internal/pkg/logging"
	"dr-ipconfig/internal/port"
	"dr-ipconfig/internal/types"

	"github.com/sirupsen/logrus"
)

// Manager runs the decision procedure. It implements the
// ReconfigurationProcedure port and composes the discovery, record store and
// apply ports.
type Manager struct {
	discovery port.InterfaceDiscovery
	records   port.RecordStore
	applier   port.Applier
}

// Ensure Manager implements the ReconfigurationProcedure port
var _ port.ReconfigurationProcedure = (*Manager)(nil)

// NewManager creates a new failover procedure manager.
func NewManager(discovery port.InterfaceDiscovery, records port.RecordStore, applier port.Applier) *Manager {
	return &Manager{
		discovery: discovery,
		records:   records,
		applier:   applier,
	}
}

// Run executes the procedure once. Interface discovery runs before any record
// is read; every terminal condition aborts without touching the live interface
// or writing further records. Every non-fatal path ends with the live
// configuration re-read and written to the previous slot unconditionally.
func (m *Manager) Run(ctx context.Context) error {
	logger := logging.WithComponent("failover")

	live, err := m.discovery.Discover(ctx)
	if err != nil {
		return err
	}
	logger = logger.WithField("interface", live.InterfaceName)

	current, currentExists, err := m.records.Load(store.SlotCurrent)
	if err != nil {
		return err
	}
	previous, previousExists, err := m.records.Load(store.SlotPrevious)
	if err != nil {
		return err
	}
	drOverride, drExists, err := m.records.Load(store.SlotDROverride)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"mode":         string(live.Mode),
		"has_current":  currentExists,
		"has_previous": previousExists,
		"has_dr":       drExists,
	}).Info("Evaluating network state")

	switch live.Mode {
	case types.ModeStatic:
		err = m.runStatic(logger, live, current, currentExists, drExists)
	case types.ModeDHCP:
		err = m.runDHCP(ctx, logger, live, current, currentExists, previous, previousExists, drOverride, drExists)
	default:
		err = fmt.Errorf("unknown addressing mode %q", live.Mode)
	}
	if err != nil {
		return err
	}

	return m.snapshotPrevious(logger, live.InterfaceName)
}

// runStatic handles the statically-addressed branch. The live config becomes
// the production record on first run, and replaces it on a real re-IP. A
// changed address is only treated as a real re-IP when no DR override record
// exists: with one present, the static address may be the DR override itself,
// and recording it as production would corrupt failback.
func (m *Manager) runStatic(logger *logrus.Entry, live *types.LiveState, current *types.IPConfig, currentExists, drExists bool) error {
	switch {
	case !currentExists:
		logger.WithField("address", live.Config.Address).Info("No saved production config, saving live config")
		return m.records.Save(store.SlotCurrent, &live.Config)

	case !live.Config.SameAddress(current) && !drExists:
		logger.WithFields(logrus.Fields{
			"old_address": current.Address,
			"new_address": live.Config.Address,
		}).Info("Static address changed, updating production config")
		return m.records.Save(store.SlotCurrent, &live.Config)

	default:
		logger.WithField("address", live.Config.Address).Info("Static config unchanged, nothing to apply")
		return nil
	}
}

// runDHCP handles the DHCP-addressed branch. DHCP on the primary interface
// means no static config is installed, so one of the saved records must be
// applied; the previous snapshot's address decides which direction to go.
func (m *Manager) runDHCP(ctx context.Context, logger *logrus.Entry, live *types.LiveState,
	current *types.IPConfig, currentExists bool,
	previous *types.IPConfig, previousExists bool,
	drOverride *types.IPConfig, drExists bool) error {

	if !drExists {
		if !currentExists {
			return fmt.Errorf("%w: interface %s is on DHCP", types.ErrNoSavedConfig, live.InterfaceName)
		}
		logger.WithField("address", current.Address).Info("No DR override, restoring production config")
		return m.applier.Apply(ctx, live.InterfaceName, current)
	}

	if !previousExists {
		return types.ErrNoHistoryForDrDecision
	}

	switch {
	case currentExists && previous.SameAddress(current):
		// Last run ended in production, so this boot is the failover.
		logger.WithFields(logrus.Fields{
			"production": current.Address,
			"dr":         drOverride.Address,
		}).Info("Previous run was production, applying DR override")
		return m.applier.Apply(ctx, live.InterfaceName, drOverride)

	case previous.SameAddress(drOverride):
		// Last run ended in DR, so this boot is the failback.
		if !currentExists {
			return fmt.Errorf("%w: previous run was DR but no production config is saved", types.ErrNoSavedConfig)
		}
		logger.WithFields(logrus.Fields{
			"production": current.Address,
			"dr":         drOverride.Address,
		}).Info("Previous run was DR, restoring production config")
		return m.applier.Apply(ctx, live.InterfaceName, current)

	default:
		return fmt.Errorf("%w: previous address %s", types.ErrUnknownPreviousState, previous.Address)
	}
}

// snapshotPrevious re-reads the live interface and writes what it observes to
// the previous slot. The re-read, rather than trusting the record just
// applied, keeps the snapshot honest about what the interface actually ended
// up with.
func (m *Manager) snapshotPrevious(logger *logrus.Entry, interfaceName string) error {
	endCfg, err := m.discovery.ReadConfig(interfaceName)
	if err != nil {
		return fmt.Errorf("failed to re-read live config for snapshot: %w", err)
	}

	if err := m.records.Save(store.SlotPrevious, endCfg); err != nil {
		return err
	}

	logger.WithField("address", endCfg.Address).Info("Snapshotted live config to previous")
	return nil
}
