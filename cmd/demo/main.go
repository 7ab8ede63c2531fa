// Command demo runs a signal sweep over a synthetic case database and
// exports the ranked results. Useful for trying the pipeline without a
// case database on hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"drugwatch/adapters/excel"
	"drugwatch/app"
	"drugwatch/domain/signal"
	"drugwatch/internal"
	"drugwatch/internal/fusion"
	"drugwatch/internal/report"
	"drugwatch/internal/terminology"
	"drugwatch/internal/testkit"
)

func main() {
	seed := flag.Int64("seed", 42, "synthetic database seed")
	totalCases := flag.Int("cases", 10000, "synthetic database size")
	outDir := flag.String("out", "./reports", "report output directory")
	flag.Parse()

	logger := internal.NewDefaultLogger()
	provider := testkit.NewTestKit(*seed).BuildProvider(testkit.DefaultProfiles(), *totalCases, time.Now())

	engine, err := fusion.NewEngine(fusion.DefaultConfig(), nil)
	if err != nil {
		log.Fatalf("fusion engine error: %v", err)
	}
	queries := app.NewQueryService(provider, terminology.NewMapper(), engine, logger)

	result, err := queries.RunQuery(context.Background(), signal.QuerySpec{
		Drugs:     []string{"drugx", "drugy", "drugz"},
		Reactions: []string{"hepatotoxicity", "qt prolongation", "headache"},
		Window:    signal.WindowAll,
	})
	if err != nil {
		log.Fatalf("query error: %v", err)
	}

	fmt.Printf("query %s: %d candidates, %d skipped, %dms\n\n",
		result.QueryID, result.Candidates, result.Skipped, result.RuntimeMs)
	for _, r := range result.Results {
		fmt.Printf("%2d. %-8s %-18s fusion=%.3f alert=%-8s %s\n",
			r.QuantumRank, r.Drug, r.Event, r.FusionScore, r.AlertLevel, r.Explanation)
	}

	htmlPath, err := report.NewHTMLWriter(*outDir).WriteReport(context.Background(), "Synthetic sweep", result.Results)
	if err != nil {
		log.Fatalf("html report error: %v", err)
	}
	xlsxPath, err := excel.NewReportWriter(*outDir).WriteReport(context.Background(), "Synthetic sweep", result.Results)
	if err != nil {
		log.Fatalf("excel report error: %v", err)
	}
	fmt.Printf("\nreports: %s, %s\n", htmlPath, xlsxPath)
}
