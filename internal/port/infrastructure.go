// Package port defines the primary ports (interfaces) for the application.
// This follows the Ports and Adapters (Hexagonal Architecture) pattern.
package port

import (
	"context"
	"time"

	"dr-ipconfig/internal/types"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/vishvananda/netlink"
)

// NetworkManager is a port for network interface operations.
// This interface abstracts netlink operations for network configuration.
type NetworkManager interface {
	// ListLinks returns all network links on the host
	ListLinks() ([]netlink.Link, error)

	// GetLinkByName returns a network link by interface name
	GetLinkByName(interfaceName string) (netlink.Link, error)

	// ListAddresses returns IPv4 addresses configured on the link
	ListAddresses(link netlink.Link) ([]netlink.Addr, error)

	// AddAddress adds an IP address to the interface
	AddAddress(link netlink.Link, addr *netlink.Addr) error

	// DeleteAddress removes an IP address from the interface
	DeleteAddress(link netlink.Link, addr *netlink.Addr) error

	// ListRoutes returns IPv4 routes
	ListRoutes() ([]netlink.Route, error)

	// AddRoute adds a route
	AddRoute(route *netlink.Route) error

	// DeleteRoute removes a route
	DeleteRoute(route *netlink.Route) error

	// SetLinkUp brings the interface up
	SetLinkUp(link netlink.Link) error
}

// FileManager is a port for file system operations.
// This interface abstracts file read/write operations.
type FileManager interface {
	// ReadFile reads the contents of a file
	ReadFile(filename string) ([]byte, error)

	// WriteFile writes data to a file with specified permissions
	WriteFile(filename string, data []byte, perm int) error

	// FileExists checks if a file exists
	FileExists(filename string) bool

	// Rename atomically replaces newpath with oldpath
	Rename(oldpath, newpath string) error
}

// RecordStore is a port for the persisted IPConfig record slots.
// Absence of a slot's backing file signals "record does not exist".
type RecordStore interface {
	// Load reads the record in the named slot. The bool reports whether the
	// slot exists; a malformed existing record is an error, not absence.
	Load(slot string) (*types.IPConfig, bool, error)

	// Save writes the record into the named slot, replacing any prior content.
	Save(slot string, cfg *types.IPConfig) error
}

// InterfaceDiscovery is a port for observing the host's active interface.
type InterfaceDiscovery interface {
	// Discover selects the single active interface and returns its live IPv4
	// configuration and addressing mode. Zero or multiple active interfaces
	// are terminal errors.
	Discover(ctx context.Context) (*types.LiveState, error)

	// ReadConfig re-reads the live IPv4 configuration of a named interface.
	ReadConfig(interfaceName string) (*types.IPConfig, error)
}

// Applier is a port for binding an IPConfig to a live interface.
type Applier interface {
	// Apply installs the record wholesale: address and prefix, default
	// gateway, and DNS servers.
	Apply(ctx context.Context, interfaceName string, cfg *types.IPConfig) error
}

// DHCPProber is a port for diagnostic DHCP probing.
// This interface abstracts a DISCOVER/OFFER exchange that binds nothing.
type DHCPProber interface {
	// Probe broadcasts a DHCP DISCOVER on the interface and returns the first
	// OFFER received, without requesting or binding the lease.
	Probe(ctx context.Context, interfaceName string, timeout time.Duration) (*dhcpv4.DHCPv4, error)
}
