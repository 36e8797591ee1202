package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"dr-ipconfig/internal/adapter/apply"
	"dr-ipconfig/internal/adapter/discovery"
	"dr-ipconfig/internal/adapter/failover"
	"dr-ipconfig/internal/adapter/infrastructure/file"
	"dr-ipconfig/internal/adapter/infrastructure/network"
	"dr-ipconfig/internal/adapter/store"
	"dr-ipconfig/internal/pkg/config"
	"dr-ipconfig/internal/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	configFlag    string
	stateDirFlag  string
	interfaceFlag string
)

// loadRunConfig resolves the effective configuration: file (when given), then
// defaults, with flags overriding either.
func loadRunConfig() (*config.Config, error) {
	cfg := config.Default()
	if configFlag != "" {
		loaded, err := config.Load(configFlag)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if stateDirFlag != "" {
		cfg.StateDir = stateDirFlag
	}
	if interfaceFlag != "" {
		cfg.Interface = interfaceFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the DR reconfiguration decision procedure once",
	Long: `Run evaluates the single active interface against the saved production,
previous and DR override records, applies at most one reconfiguration, and
snapshots the resulting live configuration. Intended to be invoked once per
boot; exits non-zero on any terminal condition without touching the interface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		logging.InitLogger(cfg.Logging)
		logger := logging.GetLogger()
		logger.WithField("state_dir", cfg.StateDir).Info("Starting DR reconfiguration run")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Shared infrastructure adapters
		networkMgr := network.NewManagerAdapter()
		fileMgr := file.NewManagerAdapter()

		procedure := failover.NewManager(
			discovery.NewManager(networkMgr, fileMgr, cfg.Interface),
			store.NewCSVStore(cfg.StateDir, fileMgr),
			apply.NewManager(networkMgr, fileMgr),
		)

		if err := procedure.Run(ctx); err != nil {
			logger.WithError(err).Error("Reconfiguration run failed")
			return err
		}

		logger.Info("Reconfiguration run completed")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&configFlag, "config", "f", "", "Path to config file (YAML)")
	runCmd.Flags().StringVar(&stateDirFlag, "state-dir", "", "Directory holding the record files (default "+config.DefaultStateDir+")")
	runCmd.Flags().StringVarP(&interfaceFlag, "interface", "i", "", "Pin the procedure to a specific interface")
	rootCmd.AddCommand(runCmd)
}
