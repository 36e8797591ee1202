// Package dhcp provides DHCP probe adapter implementation.
package dhcp

import (
	"context"
	"fmt"
	"time"

	"dr-ipconfig/internal/port"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"
)

// ProberAdapter is an adapter that implements the DHCPProber port using insomniacslk/dhcp library.
type ProberAdapter struct{}

// Ensure ProberAdapter implements the DHCPProber port
var _ port.DHCPProber = (*ProberAdapter)(nil)

// NewProberAdapter creates a new DHCP prober adapter.
func NewProberAdapter() *ProberAdapter {
	return &ProberAdapter{}
}

// Probe broadcasts a DHCP DISCOVER and returns the first OFFER received.
// The exchange stops at the OFFER: no REQUEST is sent, nothing is bound, and
// the interface configuration is left untouched.
func (p *ProberAdapter) Probe(ctx context.Context, interfaceName string, timeout time.Duration) (*dhcpv4.DHCPv4, error) {
	client, err := nclient4.New(interfaceName, nclient4.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create DHCP client: %w", err)
	}
	defer client.Close()

	offer, err := client.DiscoverOffer(ctx)
	if err != nil {
		return nil, fmt.Errorf("DHCP discover failed: %w", err)
	}

	return offer, nil
}
