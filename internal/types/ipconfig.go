// Package types defines common types used across the application.
package types

import (
	"fmt"
	"net"
)

// AddressingMode describes how the active interface obtained its IPv4 address.
type AddressingMode string

const (
	// ModeDHCP means the address was dynamically assigned (or no address is present).
	ModeDHCP AddressingMode = "dhcp"
	// ModeStatic means the address was installed as a permanent address.
	ModeStatic AddressingMode = "static"
)

// IPConfig is one flat IPv4 configuration record. Three named instances of it
// persist across runs: the production config, the end-of-last-run snapshot, and
// the optional DR override.
type IPConfig struct {
	Address      string // dotted quad, e.g. "10.0.0.5"
	PrefixLength int    // 0-32
	Gateway      string // dotted quad, optional
	PrimaryDNS   string // dotted quad, optional
	SecondaryDNS string // dotted quad, optional
}

// LiveState is the observed state of the single active interface.
type LiveState struct {
	InterfaceName string
	Mode          AddressingMode
	Config        IPConfig
}

// Validate checks that all populated fields parse as IPv4 and the prefix is in range.
func (c *IPConfig) Validate() error {
	if !isIPv4(c.Address) {
		return fmt.Errorf("invalid IPv4 address: %q", c.Address)
	}
	if c.PrefixLength < 0 || c.PrefixLength > 32 {
		return fmt.Errorf("invalid prefix length: %d", c.PrefixLength)
	}
	for _, f := range []struct{ name, value string }{
		{"gateway", c.Gateway},
		{"primary DNS server", c.PrimaryDNS},
		{"secondary DNS server", c.SecondaryDNS},
	} {
		if f.value != "" && !isIPv4(f.value) {
			return fmt.Errorf("invalid %s: %q", f.name, f.value)
		}
	}
	return nil
}

// SameAddress reports whether both records carry the same dotted-quad address.
// Prefix length, gateway and DNS servers are deliberately not part of this
// comparison: the decision procedure classifies state by address alone.
func (c *IPConfig) SameAddress(other *IPConfig) bool {
	if other == nil {
		return false
	}
	return c.Address == other.Address
}

// CIDR returns the record's address in CIDR notation.
func (c *IPConfig) CIDR() string {
	return fmt.Sprintf("%s/%d", c.Address, c.PrefixLength)
}

// DNSServers returns the populated DNS servers in order.
func (c *IPConfig) DNSServers() []string {
	var servers []string
	if c.PrimaryDNS != "" {
		servers = append(servers, c.PrimaryDNS)
	}
	if c.SecondaryDNS != "" {
		servers = append(servers, c.SecondaryDNS)
	}
	return servers
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}
