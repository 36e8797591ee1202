// Package apply binds an IPConfig record to a live network interface.
package apply

import (
	"context"
	"fmt"
	"net"
	"strings"

	"dr-ipconfig/internal/pkg/logging"
	"dr-ipconfig/internal/port"
	"dr-ipconfig/internal/types"

	"github.com/vishvananda/netlink"
)

const resolvConfPath = "/etc/resolv.conf"

// Manager is an adapter that implements the Applier port using the
// NetworkManager and FileManager ports.
type Manager struct {
	networkMgr port.NetworkManager
	fileMgr    port.FileManager
}

// Ensure Manager implements the Applier port
var _ port.Applier = (*Manager)(nil)

// NewManager creates a new apply adapter.
func NewManager(networkMgr port.NetworkManager, fileMgr port.FileManager) *Manager {
	return &Manager{
		networkMgr: networkMgr,
		fileMgr:    fileMgr,
	}
}

// Apply installs the record wholesale on the interface: address and prefix,
// default gateway, and DNS servers. The record is applied as a unit; address
// equality games are left to the decision procedure.
func (m *Manager) Apply(ctx context.Context, interfaceName string, cfg *types.IPConfig) error {
	logger := logging.WithComponentAndInterface("apply", interfaceName)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to apply invalid record: %w", err)
	}

	link, err := m.networkMgr.GetLinkByName(interfaceName)
	if err != nil {
		return fmt.Errorf("failed to get netlink interface: %w", err)
	}

	ip := net.ParseIP(cfg.Address)
	ipNet := &net.IPNet{
		IP:   ip,
		Mask: net.CIDRMask(cfg.PrefixLength, 32),
	}

	logger.WithField("ip", ipNet.String()).Info("Configuring interface with IP")

	existingAddrs, err := m.networkMgr.ListAddresses(link)
	if err != nil {
		return fmt.Errorf("failed to list existing addresses: %w", err)
	}

	// Check if the target IP is already configured
	targetConfigured := false
	for _, addr := range existingAddrs {
		if addr.IPNet.IP.Equal(ipNet.IP) && addr.IPNet.Mask.String() == ipNet.Mask.String() {
			logger.WithField("ip", ipNet.String()).Info("IP address already configured, skipping")
			targetConfigured = true
			break
		}
	}

	if !targetConfigured {
		// Remove existing IPv4 addresses that don't match our target
		for _, addr := range existingAddrs {
			if !addr.IPNet.IP.Equal(ipNet.IP) {
				if err := m.networkMgr.DeleteAddress(link, &addr); err != nil {
					logger.WithError(err).WithField("address", addr.IPNet.String()).Warn("Failed to remove existing address")
				} else {
					logger.WithField("address", addr.IPNet.String()).Debug("Removed existing address")
				}
			}
		}

		addr := &netlink.Addr{
			IPNet: ipNet,
		}
		if err := m.networkMgr.AddAddress(link, addr); err != nil {
			return fmt.Errorf("failed to add IP address %s: %w", ipNet.String(), err)
		}
		logger.WithField("ip", ipNet.String()).Info("Successfully added IP address")
	}

	if cfg.Gateway != "" {
		gateway := net.ParseIP(cfg.Gateway)
		logger.WithField("gateway", gateway.String()).Info("Setting default gateway")

		if err := m.configureDefaultRoute(link, gateway); err != nil {
			return fmt.Errorf("failed to set default gateway: %w", err)
		}
	}

	if servers := cfg.DNSServers(); len(servers) > 0 {
		if err := m.configureDNS(interfaceName, servers); err != nil {
			logger.WithError(err).Warn("Failed to configure DNS")
		}
	}

	return nil
}

// configureDefaultRoute configures the default gateway for the interface.
func (m *Manager) configureDefaultRoute(link netlink.Link, gateway net.IP) error {
	logger := logging.WithComponent("apply").WithField("gateway", gateway.String())

	routes, err := m.networkMgr.ListRoutes()
	if err != nil {
		return fmt.Errorf("failed to list routes: %w", err)
	}

	// Check for existing default route
	hasDefaultRoute := false
	for _, route := range routes {
		if route.Dst != nil && route.Dst.String() != "0.0.0.0/0" {
			continue
		}
		if route.Gw == nil {
			continue
		}
		if route.Gw.Equal(gateway) && route.LinkIndex == link.Attrs().Index {
			logger.Debug("Default route already configured, skipping")
			hasDefaultRoute = true
			continue
		}
		// Remove conflicting default route
		if err := m.networkMgr.DeleteRoute(&route); err != nil {
			logger.WithError(err).WithField("existing_gateway", route.Gw.String()).
				Warn("Failed to remove existing default route")
		} else {
			logger.WithField("existing_gateway", route.Gw.String()).
				Debug("Removed conflicting default route")
		}
	}

	if !hasDefaultRoute {
		route := &netlink.Route{
			LinkIndex: link.Attrs().Index,
			Gw:        gateway,
		}

		if err := m.networkMgr.AddRoute(route); err != nil {
			if strings.Contains(err.Error(), "file exists") {
				logger.Debug("Default route already exists, ignoring error")
			} else {
				return fmt.Errorf("failed to add default route: %w", err)
			}
		} else {
			logger.Info("Successfully configured default route")
		}
	}

	return nil
}

// configureDNS writes the record's DNS servers to /etc/resolv.conf.
func (m *Manager) configureDNS(interfaceName string, servers []string) error {
	logger := logging.WithComponentAndInterface("apply", interfaceName)

	newContent := "# Generated by dr-ipconfig\n"
	for _, server := range servers {
		newContent += fmt.Sprintf("nameserver %s\n", server)
	}

	if currentContent, err := m.fileMgr.ReadFile(resolvConfPath); err == nil {
		if string(currentContent) == newContent {
			logger.Debug("DNS configuration already up to date, skipping")
			return nil
		}
	}

	if err := m.fileMgr.WriteFile(resolvConfPath, []byte(newContent), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", resolvConfPath, err)
	}

	logger.WithField("dns_servers", strings.Join(servers, ", ")).Info("Updated resolv.conf with DNS servers")
	return nil
}
