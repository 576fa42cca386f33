//go:build wireinject
// +build wireinject

package di

import (
	"CryptoHunter/pkg/config"
	"CryptoHunter/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideCache,
		ProvideMetrics,

		// Market data
		ProvideSnapshotSource,

		// Alerting
		ProvideThresholdStore,
		ProvideEvaluator,
		ProvideDedupGate,
		ProvideNotifiers,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideHistoryStore,
		ProvideAlertPublisher,

		// Use cases
		ProvideMonitor,
		ProvideStreamCollector,
		ProvidePredictionService,
		ProvidePortfolioManager,
		ProvidePaperTrader,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
