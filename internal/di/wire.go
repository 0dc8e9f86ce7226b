//go:build wireinject
// +build wireinject

package di

import (
	"PulseLab/pkg/config"
	"PulseLab/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideRecorder,
		ProvideOutlet,
		ProvideSessionStore,
		ProvideGatewayStream,

		// Live state
		ProvideLiveStatus,
		ProvideRRLiveHandler,

		// Use cases
		ProvideSampleProcessor,
		ProvideSessionManager,
		ProvideFrameCollector,
		ProvideReportService,
		ProvideReportQueue,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
