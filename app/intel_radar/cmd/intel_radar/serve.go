package main

import (
	"context"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the brief API and run scheduled passes",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	app, cleanup, err := initApp(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return app.Run()
}

func newApp(logger log.Logger, hs *http.Server, sched *scheduler.Scheduler) *kratos.App {
	helper := log.NewHelper(logger)
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
		kratos.AfterStart(func(context.Context) error {
			if !sched.Enabled() {
				helper.Info("no schedule configured")
				return nil
			}
			return sched.Start()
		}),
		kratos.BeforeStop(func(context.Context) error {
			sched.Stop()
			return nil
		}),
	)
}
