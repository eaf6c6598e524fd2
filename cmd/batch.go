package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/batch"
	"github.com/sells-group/audit-cli/internal/model"
	"github.com/sells-group/audit-cli/internal/pipeline"
	"github.com/sells-group/audit-cli/internal/store"
)

var (
	batchInput   string
	batchModules string
	batchDepth   int
	batchEvery   string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a list of websites from a file",
	Long:  "Reads URLs from a CSV, XLSX, YAML, or plain-text file and runs each through the pipeline with retry and backoff. Results are persisted to the store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		modules, err := parseModules(batchModules)
		if err != nil {
			return err
		}
		template := requestTemplate(modules, batchDepth)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if batchEvery == "" {
			return runBatch(ctx, st, template)
		}

		// Scheduled mode: run the batch on the given cron spec until
		// interrupted.
		scheduler := cron.New()
		_, err = scheduler.AddFunc(batchEvery, func() {
			if err := runBatch(ctx, st, template); err != nil {
				zap.L().Error("scheduled batch failed", zap.Error(err))
			}
		})
		if err != nil {
			return eris.Wrapf(err, "invalid cron spec %q", batchEvery)
		}

		zap.L().Info("batch scheduler started", zap.String("spec", batchEvery))
		scheduler.Start()
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return nil
	},
}

func runBatch(ctx context.Context, st store.Store, template model.AnalysisRequest) error {
	entries, err := batch.LoadInput(batchInput)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return eris.Errorf("no URLs found in %s", batchInput)
	}
	items := batch.Items(entries, template)

	analyzer := pipeline.New(cfg)
	analyze := func(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
		result, err := analyzer.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := st.SaveResult(ctx, result); err != nil {
			zap.L().Error("save result failed", zap.String("url", req.URL), zap.Error(err))
		}
		return result, nil
	}

	backoff := make([]time.Duration, 0, len(cfg.Batch.BackoffSecs))
	for _, secs := range cfg.Batch.BackoffSecs {
		backoff = append(backoff, time.Duration(secs)*time.Second)
	}
	orchestrator := batch.New(analyze, cfg.Batch.MaxAttempts, backoff,
		time.Duration(cfg.Batch.ItemPauseSecs)*time.Second)

	summary := orchestrator.Run(ctx, items)
	zap.L().Info("batch complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("exhausted", summary.Exhausted),
		zap.Float64("cost_usd", summary.TotalCost),
		zap.Duration("duration", summary.Duration),
	)
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "input file: .csv, .xlsx, .yaml, or URL-per-line text (required)")
	batchCmd.Flags().StringVar(&batchModules, "modules", "all", "critique modules: industry,seo,visual,competitor or all")
	batchCmd.Flags().IntVar(&batchDepth, "depth", 0, "crawl depth tier: 1, 3, or 10 (default from config)")
	batchCmd.Flags().StringVar(&batchEvery, "every", "", "cron spec to re-run the batch on a schedule (e.g. \"0 6 * * 1\")")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
