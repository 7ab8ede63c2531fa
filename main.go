package main

import (
	"log"

	"github.com/joho/godotenv"

	"drugwatch/adapters/excel"
	"drugwatch/adapters/postgres"
	"drugwatch/adapters/stats/bayes"
	"drugwatch/adapters/stats/causality"
	"drugwatch/adapters/stats/disprop"
	"drugwatch/adapters/stats/engine"
	"drugwatch/adapters/stats/temporal"
	"drugwatch/app"
	"drugwatch/internal"
	"drugwatch/internal/api"
	"drugwatch/internal/config"
	"drugwatch/internal/fusion"
	"drugwatch/internal/report"
	"drugwatch/internal/terminology"
	"drugwatch/ports"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		log.Fatalf("metrics provider error: %v", err)
	}

	detector := engine.NewDetector(
		disprop.NewAnalyzer(disprop.ThresholdsForPreset(disprop.Preset(cfg.Detection.ThresholdPreset))),
		bayes.NewDetector(bayes.Config{
			EB05Threshold: cfg.Detection.EB05Threshold,
			PriorAlpha:    1.0,
			PriorBeta:     1.0,
		}),
		causality.NewAssessor(),
		temporal.NewAnalyzer(temporal.DefaultConfig()),
	)
	fusionEngine, err := fusion.NewEngine(fusion.DefaultConfig(), detector)
	if err != nil {
		log.Fatalf("fusion engine error: %v", err)
	}

	queries := app.NewQueryService(provider, terminology.NewMapper(), fusionEngine, logger)
	reports := report.NewHTMLWriter(cfg.Paths.ReportDir)

	server := api.NewServer(queries, reports, logger, cfg.Server.GinMode)
	logger.Info("drugwatch listening on :%s (source=%s, preset=%s)",
		cfg.Server.Port, cfg.Paths.Source, cfg.Detection.ThresholdPreset)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func buildProvider(cfg *config.Config, logger *internal.Logger) (ports.MetricsProvider, error) {
	switch cfg.Paths.Source {
	case config.SourcePostgres:
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres case metrics")
		return postgres.NewCaseMetricsRepository(db), nil
	default:
		logger.Info("using excel case metrics from %s", cfg.Paths.ExcelFile)
		return excel.NewCaseReader(cfg.Paths.ExcelFile)
	}
}
