//go:build unit

package discovery

import (
	"context"
	"net"
	"testing"

	"dr-ipconfig/internal/mock"
	"dr-ipconfig/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"
)

func activeLink(index int, name string) netlink.Link {
	return &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{
		Index:        index,
		Name:         name,
		Flags:        net.FlagUp,
		OperState:    netlink.OperUp,
		HardwareAddr: net.HardwareAddr{0x52, 0x54, 0x00, 0x12, 0x34, byte(index)},
	}}
}

func downLink(index int, name string) netlink.Link {
	return &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{
		Index:        index,
		Name:         name,
		OperState:    netlink.OperDown,
		HardwareAddr: net.HardwareAddr{0x52, 0x54, 0x00, 0x12, 0x34, byte(index)},
	}}
}

func loopbackLink() netlink.Link {
	return &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{
		Index:     1,
		Name:      "lo",
		Flags:     net.FlagUp | net.FlagLoopback,
		OperState: netlink.OperUp,
	}}
}

func v4Addr(cidr string, flags int) netlink.Addr {
	ip, ipNet, _ := net.ParseCIDR(cidr)
	ipNet.IP = ip
	return netlink.Addr{
		IPNet: ipNet,
		Flags: flags,
		Scope: unix.RT_SCOPE_UNIVERSE,
	}
}

type fixture struct {
	networkMgr *mock.MockNetworkManager
	fileMgr    *mock.MockFileManager
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		networkMgr: mock.NewMockNetworkManager(ctrl),
		fileMgr:    mock.NewMockFileManager(ctrl),
	}
}

func TestDiscover_SingleStaticInterface(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "")

	eth0 := activeLink(2, "eth0")
	f.networkMgr.EXPECT().ListLinks().Return([]netlink.Link{loopbackLink(), eth0, downLink(3, "eth1")}, nil)
	f.networkMgr.EXPECT().ListAddresses(eth0).Return([]netlink.Addr{v4Addr("10.0.0.5/24", unix.IFA_F_PERMANENT)}, nil)
	f.networkMgr.EXPECT().ListRoutes().Return([]netlink.Route{
		{LinkIndex: 2, Gw: net.ParseIP("10.0.0.1")},
	}, nil)
	f.fileMgr.EXPECT().ReadFile("/etc/resolv.conf").
		Return([]byte("search example.com\nnameserver 10.0.0.53\nnameserver 10.0.0.54\n"), nil)

	live, err := m.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eth0", live.InterfaceName)
	assert.Equal(t, types.ModeStatic, live.Mode)
	assert.Equal(t, types.IPConfig{
		Address:      "10.0.0.5",
		PrefixLength: 24,
		Gateway:      "10.0.0.1",
		PrimaryDNS:   "10.0.0.53",
		SecondaryDNS: "10.0.0.54",
	}, live.Config)
}

func TestDiscover_DhcpAssignedAddress(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "")

	eth0 := activeLink(2, "eth0")
	f.networkMgr.EXPECT().ListLinks().Return([]netlink.Link{eth0}, nil)
	// No IFA_F_PERMANENT: the kernel marks the address as dynamically assigned
	f.networkMgr.EXPECT().ListAddresses(eth0).Return([]netlink.Addr{v4Addr("192.168.50.20/24", 0)}, nil)
	f.networkMgr.EXPECT().ListRoutes().Return([]netlink.Route{
		{LinkIndex: 2, Gw: net.ParseIP("192.168.50.1")},
	}, nil)
	f.fileMgr.EXPECT().ReadFile("/etc/resolv.conf").Return(nil, assert.AnError)

	live, err := m.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.ModeDHCP, live.Mode)
	assert.Equal(t, "192.168.50.20", live.Config.Address)
	assert.Empty(t, live.Config.PrimaryDNS)
}

func TestDiscover_NoAddressMeansDhcpMode(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "")

	eth0 := activeLink(2, "eth0")
	f.networkMgr.EXPECT().ListLinks().Return([]netlink.Link{eth0}, nil)
	f.networkMgr.EXPECT().ListAddresses(eth0).Return([]netlink.Addr{}, nil)

	live, err := m.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.ModeDHCP, live.Mode)
	assert.Empty(t, live.Config.Address)
}

func TestDiscover_NoActiveInterface(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "")

	f.networkMgr.EXPECT().ListLinks().Return([]netlink.Link{loopbackLink(), downLink(2, "eth0")}, nil)

	_, err := m.Discover(context.Background())
	assert.ErrorIs(t, err, types.ErrNoActiveInterface)
}

func TestDiscover_AmbiguousInterface(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "")

	f.networkMgr.EXPECT().ListLinks().Return([]netlink.Link{activeLink(2, "eth0"), activeLink(3, "eth1")}, nil)

	_, err := m.Discover(context.Background())
	assert.ErrorIs(t, err, types.ErrAmbiguousInterface)
	assert.Contains(t, err.Error(), "eth0")
	assert.Contains(t, err.Error(), "eth1")
}

func TestDiscover_PinnedInterface(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "eth1")

	eth1 := activeLink(3, "eth1")
	f.networkMgr.EXPECT().GetLinkByName("eth1").Return(eth1, nil)
	f.networkMgr.EXPECT().ListAddresses(eth1).Return([]netlink.Addr{v4Addr("10.0.1.5/24", unix.IFA_F_PERMANENT)}, nil)
	f.networkMgr.EXPECT().ListRoutes().Return([]netlink.Route{}, nil)
	f.fileMgr.EXPECT().ReadFile("/etc/resolv.conf").Return(nil, assert.AnError)

	live, err := m.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eth1", live.InterfaceName)
	assert.Empty(t, live.Config.Gateway)
}

func TestDiscover_PinnedInterfaceDown(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "eth1")

	f.networkMgr.EXPECT().GetLinkByName("eth1").Return(downLink(3, "eth1"), nil)

	_, err := m.Discover(context.Background())
	assert.ErrorIs(t, err, types.ErrNoActiveInterface)
}

func TestReadConfig(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.networkMgr, f.fileMgr, "")

	eth0 := activeLink(2, "eth0")

	t.Run("WithAddress", func(t *testing.T) {
		f.networkMgr.EXPECT().GetLinkByName("eth0").Return(eth0, nil)
		f.networkMgr.EXPECT().ListAddresses(eth0).Return([]netlink.Addr{v4Addr("172.16.0.5/16", unix.IFA_F_PERMANENT)}, nil)
		f.networkMgr.EXPECT().ListRoutes().Return([]netlink.Route{
			{LinkIndex: 2, Gw: net.ParseIP("172.16.0.1")},
		}, nil)
		f.fileMgr.EXPECT().ReadFile("/etc/resolv.conf").Return([]byte("nameserver 172.16.0.53\n"), nil)

		cfg, err := m.ReadConfig("eth0")
		require.NoError(t, err)
		assert.Equal(t, "172.16.0.5", cfg.Address)
		assert.Equal(t, 16, cfg.PrefixLength)
		assert.Equal(t, "172.16.0.1", cfg.Gateway)
		assert.Equal(t, "172.16.0.53", cfg.PrimaryDNS)
	})

	t.Run("NoAddress", func(t *testing.T) {
		f.networkMgr.EXPECT().GetLinkByName("eth0").Return(eth0, nil)
		f.networkMgr.EXPECT().ListAddresses(eth0).Return([]netlink.Addr{}, nil)

		_, err := m.ReadConfig("eth0")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no IPv4 address")
	})
}
