package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	infraDhcp "dr-ipconfig/internal/adapter/infrastructure/dhcp"
	"dr-ipconfig/internal/adapter/discovery"
	"dr-ipconfig/internal/adapter/infrastructure/file"
	"dr-ipconfig/internal/adapter/infrastructure/network"

	"github.com/spf13/cobra"
)

var (
	probeInterfaceFlag string
	probeTimeoutFlag   time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe for a DHCP server on the active interface",
	Long: `Probe broadcasts a DHCP DISCOVER and reports the first OFFER received.
Nothing is requested or bound, and the interface configuration is left
untouched. Useful for checking which site's DHCP infrastructure is answering
before or after a failover.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeoutFlag+5*time.Second)
		defer cancel()

		ifaceName := probeInterfaceFlag
		if ifaceName == "" {
			networkMgr := network.NewManagerAdapter()
			fileMgr := file.NewManagerAdapter()
			live, err := discovery.NewManager(networkMgr, fileMgr, "").Discover(ctx)
			if err != nil {
				return err
			}
			ifaceName = live.InterfaceName
		}

		prober := infraDhcp.NewProberAdapter()
		offer, err := prober.Probe(ctx, ifaceName, probeTimeoutFlag)
		if err != nil {
			return fmt.Errorf("no DHCP offer on %s: %w", ifaceName, err)
		}

		fmt.Printf("Interface: %s\n", ifaceName)
		fmt.Printf("Offered address: %s\n", offer.YourIPAddr)
		if mask := offer.SubnetMask(); mask != nil {
			ones, _ := mask.Size()
			fmt.Printf("Prefix length: %d\n", ones)
		}
		if serverID := offer.ServerIdentifier(); serverID != nil {
			fmt.Printf("DHCP server: %s\n", serverID)
		}
		if routers := offer.Router(); len(routers) > 0 {
			fmt.Printf("Gateway: %s\n", routers[0])
		}
		if dns := offer.DNS(); len(dns) > 0 {
			var servers []string
			for _, s := range dns {
				servers = append(servers, s.String())
			}
			fmt.Printf("DNS servers: %s\n", strings.Join(servers, ", "))
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVarP(&probeInterfaceFlag, "interface", "i", "", "Interface to probe (default: the active interface)")
	probeCmd.Flags().DurationVar(&probeTimeoutFlag, "timeout", 10*time.Second, "How long to wait for an offer")
	rootCmd.AddCommand(probeCmd)
}
