//go:build wireinject
// +build wireinject

package di

import (
	"CropPulse/pkg/config"
	"CropPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCatalog,
		ProvideThresholds,

		// Data and models
		ProvidePriceSource,
		ProvideHistoricalStore,
		ProvideModelSource,
		ProvidePredictor,
		ProvideWeather,

		// Analytics
		ProvideVolatilityAnalyzer,
		ProvideOpportunityEvaluator,
		ProvideMarketAnalytics,
		ProvideComprehensive,
		ProvideMarketData,
		ProvidePredictUseCase,

		// HTTP
		ProvideCache,
		ProvideMarketHandler,
		ProvideAnalyticsHandler,
		ProvideRouter,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Alerts
		ProvideKafkaProducer,
		ProvideAlertPipeline,
		ProvideAlertScanner,

		ProvideApp,
	)
	return nil, nil, nil
}
