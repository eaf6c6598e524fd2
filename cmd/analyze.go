package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/pipeline"
	"github.com/sells-group/audit-cli/internal/report"
)

var (
	analyzeURL     string
	analyzeModules string
	analyzeDepth   int
	analyzeSave    bool
	analyzeReport  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		modules, err := parseModules(analyzeModules)
		if err != nil {
			return err
		}

		req := requestTemplate(modules, analyzeDepth)
		req.URL = analyzeURL

		result, err := pipeline.New(cfg).Analyze(ctx, req)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.String("url", result.URL),
			zap.String("grade", result.Score.Grade),
			zap.Float64("score", result.Score.Score),
			zap.Int("critiques", result.Critiques.Total()),
			zap.Float64("cost_usd", result.Cost.TotalCost),
		)

		if analyzeSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveResult(ctx, result); err != nil {
				return eris.Wrap(err, "save result")
			}
		}

		if analyzeReport != "" {
			f, err := os.Create(analyzeReport)
			if err != nil {
				return eris.Wrap(err, "create report file")
			}
			defer f.Close()
			if err := report.WriteMarkdown(f, result); err != nil {
				return eris.Wrap(err, "write report")
			}
			zap.L().Info("report written", zap.String("path", analyzeReport))
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "website URL (required)")
	analyzeCmd.Flags().StringVar(&analyzeModules, "modules", "all", "critique modules: industry,seo,visual,competitor or all")
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", 0, "crawl depth tier: 1, 3, or 10 (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the result to the store")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "write a markdown report to this path instead of JSON to stdout")
	_ = analyzeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(analyzeCmd)
}
