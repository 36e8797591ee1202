//go:build unit

package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManagerAdapter(t *testing.T) {
	adapter := NewManagerAdapter()
	assert.NotNil(t, adapter)
}

func TestManagerAdapter_GetLinkByName(t *testing.T) {
	adapter := NewManagerAdapter()

	t.Run("ValidInterface", func(t *testing.T) {
		link, err := adapter.GetLinkByName("lo")
		if err != nil {
			t.Skip("Loopback interface not available, skipping test")
		}
		assert.NotNil(t, link)
		assert.Equal(t, "lo", link.Attrs().Name)
	})

	t.Run("InvalidInterface", func(t *testing.T) {
		_, err := adapter.GetLinkByName("nonexistent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get netlink interface")
	})
}

func TestManagerAdapter_ListLinks(t *testing.T) {
	adapter := NewManagerAdapter()

	links, err := adapter.ListLinks()
	if err != nil {
		t.Skip("netlink not available, skipping test")
	}
	// Every host has at least the loopback link
	assert.NotEmpty(t, links)
}

// Address and route mutation require elevated privileges and would modify
// system state; those paths are covered through the mocked NetworkManager in
// the apply and discovery tests.
