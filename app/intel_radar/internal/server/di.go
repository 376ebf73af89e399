package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/intel_radar/app/intel_radar/internal/service"
)

// ProviderSet wires the pipeline, its collaborators and the brief API.
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Pipeline providers
	NewPipeline,
	NewProfileProvider,
	NewBriefStore,
	NewPublisher,
	NewRunner,
	NewScheduler,

	// Service providers
	service.NewBriefService,
)
