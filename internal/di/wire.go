//go:build wireinject
// +build wireinject

package di

import (
	"TradeSim/pkg/config"
	"TradeSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideAssets,

		// Storage and infrastructure
		ProvideMarketStore,
		ProvidePriceSource,
		ProvideTradePublisher,
		ProvideKafkaConsumer,
		ProvideCache,

		// Use cases
		ProvideTicksHandler,
		ProvideSummaryService,
		ProvideFeeder,
		ProvideSignalEngine,
		ProvideDecisionEngines,

		// Jobs and HTTP surface
		ProvideScheduler,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
