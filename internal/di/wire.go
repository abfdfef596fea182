//go:build wireinject
// +build wireinject

package di

import (
	"github.com/katheedev/crypto-sentiment/pkg/config"
	"github.com/katheedev/crypto-sentiment/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideQueue,

		// Repositories
		ProvideRunStore,
		ProvideConfigStore,
		ProvideModelStore,
		ProvideRunPublisher,

		// Domain services
		ProvideMarket,
		ProvideSocial,
		ProvideScorer,

		// Use cases
		ProvideRuntimeConfig,
		ProvideAnalyzer,
		ProvideBacktester,
		ProvidePredictor,
		ProvideCollector,

		// HTTP surface
		ProvideAuth,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
