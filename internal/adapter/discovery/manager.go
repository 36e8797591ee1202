// Package discovery selects the host's single active interface and reads its
// live IPv4 configuration and addressing mode.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"

	"dr-ipconfig/internal/pkg/logging"
	"dr-ipconfig/internal/port"
	"dr-ipconfig/internal/types"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const defaultResolvConfPath = "/etc/resolv.conf"

// Manager is an adapter that implements the InterfaceDiscovery port using the
// NetworkManager and FileManager ports.
type Manager struct {
	networkMgr     port.NetworkManager
	fileMgr        port.FileManager
	pinned         string
	resolvConfPath string
}

// Ensure Manager implements the InterfaceDiscovery port
var _ port.InterfaceDiscovery = (*Manager)(nil)

// NewManager creates a new discovery adapter. A non-empty pinned name bypasses
// auto-selection; the pinned interface is still required to be up.
func NewManager(networkMgr port.NetworkManager, fileMgr port.FileManager, pinned string) *Manager {
	return &Manager{
		networkMgr:     networkMgr,
		fileMgr:        fileMgr,
		pinned:         pinned,
		resolvConfPath: defaultResolvConfPath,
	}
}

// Discover selects the single active interface. Zero qualifying interfaces is
// a terminal failure, as is more than one: the procedure is defined only for
// single-homed hosts, and the check runs before any record is touched.
func (m *Manager) Discover(ctx context.Context) (*types.LiveState, error) {
	logger := logging.WithComponent("discovery")

	link, err := m.selectLink()
	if err != nil {
		return nil, err
	}
	name := link.Attrs().Name

	cfg, mode, err := m.readLink(link)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration of %s: %w", name, err)
	}

	logger.WithField("interface", name).WithField("mode", string(mode)).
		WithField("address", cfg.Address).Info("Selected active interface")

	return &types.LiveState{
		InterfaceName: name,
		Mode:          mode,
		Config:        *cfg,
	}, nil
}

// ReadConfig re-reads the live IPv4 configuration of a named interface.
func (m *Manager) ReadConfig(interfaceName string) (*types.IPConfig, error) {
	link, err := m.networkMgr.GetLinkByName(interfaceName)
	if err != nil {
		return nil, err
	}
	cfg, _, err := m.readLink(link)
	if err != nil {
		return nil, err
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("interface %s has no IPv4 address", interfaceName)
	}
	return cfg, nil
}

func (m *Manager) selectLink() (netlink.Link, error) {
	if m.pinned != "" {
		link, err := m.networkMgr.GetLinkByName(m.pinned)
		if err != nil {
			return nil, fmt.Errorf("%w: pinned interface %s: %v", types.ErrNoActiveInterface, m.pinned, err)
		}
		if !isActive(link) {
			return nil, fmt.Errorf("%w: pinned interface %s is not up", types.ErrNoActiveInterface, m.pinned)
		}
		return link, nil
	}

	links, err := m.networkMgr.ListLinks()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	var active []netlink.Link
	for _, link := range links {
		if isActive(link) {
			active = append(active, link)
		}
	}

	switch len(active) {
	case 0:
		return nil, types.ErrNoActiveInterface
	case 1:
		return active[0], nil
	default:
		names := make([]string, 0, len(active))
		for _, link := range active {
			names = append(names, link.Attrs().Name)
		}
		return nil, fmt.Errorf("%w: %s", types.ErrAmbiguousInterface, strings.Join(names, ", "))
	}
}

// isActive reports whether a link qualifies as the host's active interface:
// administratively and operationally up, not loopback, and carrying a MAC.
func isActive(link netlink.Link) bool {
	attrs := link.Attrs()
	if attrs.Flags&net.FlagLoopback != 0 {
		return false
	}
	if attrs.Flags&net.FlagUp == 0 {
		return false
	}
	if attrs.OperState != netlink.OperUp {
		return false
	}
	return len(attrs.HardwareAddr) > 0
}

// readLink reads the link's IPv4 configuration. The addressing mode is dhcp
// when the selected address lacks IFA_F_PERMANENT (the kernel marks
// dynamically assigned addresses that way) or when no IPv4 address is present.
func (m *Manager) readLink(link netlink.Link) (*types.IPConfig, types.AddressingMode, error) {
	addrs, err := m.networkMgr.ListAddresses(link)
	if err != nil {
		return nil, "", err
	}

	var selected *netlink.Addr
	for i := range addrs {
		addr := &addrs[i]
		if addr.IPNet == nil || addr.IPNet.IP.To4() == nil {
			continue
		}
		if addr.Scope != unix.RT_SCOPE_UNIVERSE {
			continue
		}
		selected = addr
		break
	}

	if selected == nil {
		return &types.IPConfig{}, types.ModeDHCP, nil
	}

	mode := types.ModeStatic
	if selected.Flags&unix.IFA_F_PERMANENT == 0 {
		mode = types.ModeDHCP
	}

	prefix, _ := selected.IPNet.Mask.Size()
	cfg := &types.IPConfig{
		Address:      selected.IPNet.IP.To4().String(),
		PrefixLength: prefix,
	}

	gateway, err := m.defaultGateway(link)
	if err != nil {
		return nil, "", err
	}
	cfg.Gateway = gateway

	cfg.PrimaryDNS, cfg.SecondaryDNS = m.readDNSServers()

	return cfg, mode, nil
}

func (m *Manager) defaultGateway(link netlink.Link) (string, error) {
	routes, err := m.networkMgr.ListRoutes()
	if err != nil {
		return "", err
	}
	for _, route := range routes {
		if route.Dst != nil && route.Dst.String() != "0.0.0.0/0" {
			continue
		}
		if route.Gw == nil || route.LinkIndex != link.Attrs().Index {
			continue
		}
		return route.Gw.String(), nil
	}
	return "", nil
}

// readDNSServers parses up to two nameservers from resolv.conf. A missing or
// unreadable resolv.conf is not an error; DNS fields stay empty.
func (m *Manager) readDNSServers() (primary, secondary string) {
	data, err := m.fileMgr.ReadFile(m.resolvConfPath)
	if err != nil {
		return "", ""
	}

	var servers []string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 || fields[0] != "nameserver" {
			continue
		}
		ip := net.ParseIP(fields[1])
		if ip == nil || ip.To4() == nil {
			continue
		}
		servers = append(servers, fields[1])
		if len(servers) == 2 {
			break
		}
	}

	if len(servers) > 0 {
		primary = servers[0]
	}
	if len(servers) > 1 {
		secondary = servers[1]
	}
	return primary, secondary
}
