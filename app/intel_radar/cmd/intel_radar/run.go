package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/profile"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/publish"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

var (
	runOrg     string
	runProfile string
	runOut     string
	runStore   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print the brief",
	Long: `Runs one intelligence pass for an organization. The profile comes from
--profile (a YAML file) or is looked up by --org through the configured provider.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runOrg, "org", "", "organization id to look up")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "path to an organization profile YAML")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the brief JSON to this file instead of stdout")
	runCmd.Flags().BoolVar(&runStore, "store", false, "persist the brief and publish its signals")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	if runOrg == "" && runProfile == "" {
		return errors.New("one of --org or --profile is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := engine.NewPipeline(ctx, cfg, nil)
	if err != nil {
		return err
	}
	r := &engine.Runner{
		Profiles: profile.NewProvider(cfg.Profiles, nil),
		Pipeline: p,
		Options:  engine.OptionsFromConfig(cfg),
	}
	r.Options.Progress = func(stage string, percent int) {
		logger.Log.Debugf("progress %3d%% %s", percent, stage)
	}

	if runStore {
		store, cleanup, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer cleanup()
		r.Store = store

		if cfg.NATS.URL != "" {
			pub, err := publish.NewNATSPublisher(cfg.NATS)
			if err != nil {
				return err
			}
			defer pub.Close()
			r.Publisher = pub
		}
	}

	var b *model.IntelligenceBrief
	if runProfile != "" {
		prof, perr := profile.LoadFile(runProfile)
		if perr != nil {
			return perr
		}
		b, err = r.RunProfile(ctx, prof)
	} else {
		b, err = r.RunForOrganization(ctx, runOrg)
	}
	if err != nil {
		if b == nil {
			return err
		}
		logger.Log.Errorf("brief %s not stored: %v", b.RunID, err)
	}
	return writeBrief(cmd, b)
}

func writeBrief(cmd *cobra.Command, b *model.IntelligenceBrief) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal brief: %w", err)
	}
	if runOut == "" {
		cmd.Println(string(data))
		return nil
	}
	if err := os.WriteFile(runOut, data, 0o644); err != nil {
		return err
	}
	logger.Log.Infof("brief %s written to %s (degraded=%v)", b.RunID, runOut, b.Degraded)
	return nil
}
