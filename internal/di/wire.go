//go:build wireinject
// +build wireinject

package di

import (
	"MacroPulse/pkg/config"
	"MacroPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideRegistry,
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideStore,
		ProvidePublisher,
		ProvideLocker,
		ProvideFinanceFlow,
		ProvideCanonicalizer,

		// Use cases
		ProvideCalendarIngest,
		ProvideFxIngest,
		ProvideJobRunner,
		ProvideOverviewService,

		// Transports
		ProvideOverviewHandler,
		ProvideHTTPServer,
		ProvideScheduler,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
