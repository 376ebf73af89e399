package server

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/intel_radar/app/intel_radar/internal/service"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
)

const runTimeoutHeadroom = 30 * time.Second

const (
	OperationLatestBrief = "/intel.v1.Briefs/LatestBrief"
	OperationGetRun      = "/intel.v1.Briefs/GetRun"
	OperationTriggerRun  = "/intel.v1.Briefs/TriggerRun"
)

// NewHTTPServer serves the brief API.
func NewHTTPServer(c *config.Config, s *service.BriefService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Server.Addr != "" {
		opts = append(opts, http.Address(c.Server.Addr))
	}
	opts = append(opts, http.Timeout(requestTimeout(c)))

	srv := http.NewServer(opts...)
	RegisterBriefHTTPServer(srv, s)
	log.NewHelper(logger).Infof("brief api on %s", c.Server.Addr)
	return srv
}

// requestTimeout is the configured server timeout, or the run deadline plus headroom.
func requestTimeout(c *config.Config) time.Duration {
	if c.Server.TimeoutMs > 0 {
		return time.Duration(c.Server.TimeoutMs) * time.Millisecond
	}
	return engine.OptionsFromConfig(c).OverallDeadline + runTimeoutHeadroom
}

// RegisterBriefHTTPServer mounts the brief routes on srv.
func RegisterBriefHTTPServer(srv *http.Server, s *service.BriefService) {
	r := srv.Route("/")
	r.GET("/v1/organizations/{org}/briefs/latest", latestBriefHandler(s))
	r.POST("/v1/organizations/{org}/runs", triggerRunHandler(s))
	r.GET("/v1/runs/{run}", getRunHandler(s))
}

func latestBriefHandler(s *service.BriefService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		org := ctx.Vars().Get("org")
		http.SetOperation(ctx, OperationLatestBrief)
		h := ctx.Middleware(func(ctx context.Context, _ interface{}) (interface{}, error) {
			return s.LatestBrief(ctx, org)
		})
		out, err := h(ctx, org)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func triggerRunHandler(s *service.BriefService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		org := ctx.Vars().Get("org")
		http.SetOperation(ctx, OperationTriggerRun)
		h := ctx.Middleware(func(ctx context.Context, _ interface{}) (interface{}, error) {
			return s.TriggerRun(ctx, org)
		})
		out, err := h(ctx, org)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func getRunHandler(s *service.BriefService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		run := ctx.Vars().Get("run")
		http.SetOperation(ctx, OperationGetRun)
		h := ctx.Middleware(func(ctx context.Context, _ interface{}) (interface{}, error) {
			return s.GetRun(ctx, run)
		})
		out, err := h(ctx, run)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}
