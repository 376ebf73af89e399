package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the service name reported to kratos.
	Name string = "intel_radar"
	// Version is set at build time.
	Version string
	// flagconf is the config file path.
	flagconf string

	id, _ = os.Hostname()
)

var rootCmd = &cobra.Command{
	Use:           "intel_radar",
	Short:         "Organization intelligence radar",
	Long:          `Collects open-source coverage about an organization and its competitors and turns it into an intelligence brief.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagconf, "conf", "app/intel_radar/configs/config.yaml", "config path, eg: --conf config.yaml")
}

// loadConfig reads the config file and initializes the process logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", flagconf, err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
