//go:build unit

package failover

import (
	"context"
	"testing"

	"dr-ipconfig/internal/adapter/infrastructure/file"
	"dr-ipconfig/internal/adapter/store"
	"dr-ipconfig/internal/mock"
	"dr-ipconfig/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// Drives the procedure through a full production -> DR -> production cycle
// against a real CSV store on disk, with only the host-facing ports mocked.
func TestRun_FailoverAndFailbackCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	discovery := mock.NewMockInterfaceDiscovery(ctrl)
	applier := mock.NewMockApplier(ctrl)
	records := store.NewCSVStore(t.TempDir(), file.NewManagerAdapter())
	manager := NewManager(discovery, records, applier)

	ctx := context.Background()
	production := record("10.0.0.5")
	drOverride := record("172.16.0.5")

	require.NoError(t, records.Save(store.SlotDROverride, drOverride))

	// Boot 1: static production addressing, nothing saved yet. First-run
	// bootstrap records the live config as production even though the DR
	// override is already provisioned.
	discovery.EXPECT().Discover(ctx).Return(liveState(types.ModeStatic, production), nil)
	discovery.EXPECT().ReadConfig("eth0").Return(production, nil)
	require.NoError(t, manager.Run(ctx))

	current, exists, err := records.Load(store.SlotCurrent)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, production, current)

	previous, exists, err := records.Load(store.SlotPrevious)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, production, previous)

	// Boot 2: DHCP addressing signals the DR event; previous matches
	// production, so the DR override goes live.
	discovery.EXPECT().Discover(ctx).Return(liveState(types.ModeDHCP, record("192.168.50.20")), nil)
	applier.EXPECT().Apply(ctx, "eth0", drOverride).Return(nil)
	discovery.EXPECT().ReadConfig("eth0").Return(drOverride, nil)
	require.NoError(t, manager.Run(ctx))

	previous, _, err = records.Load(store.SlotPrevious)
	require.NoError(t, err)
	assert.Equal(t, drOverride, previous)

	// Boot 3: DHCP again back at the production site; previous matches the DR
	// override, so production addressing is restored.
	discovery.EXPECT().Discover(ctx).Return(liveState(types.ModeDHCP, record("192.168.50.21")), nil)
	applier.EXPECT().Apply(ctx, "eth0", production).Return(nil)
	discovery.EXPECT().ReadConfig("eth0").Return(production, nil)
	require.NoError(t, manager.Run(ctx))

	previous, _, err = records.Load(store.SlotPrevious)
	require.NoError(t, err)
	assert.Equal(t, production, previous)

	// The production record never moved through the whole cycle.
	current, _, err = records.Load(store.SlotCurrent)
	require.NoError(t, err)
	assert.Equal(t, production, current)
}
