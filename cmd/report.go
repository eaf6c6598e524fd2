package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/report"
)

var (
	reportURL string
	reportOut string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a markdown report for a stored result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := st.GetResult(ctx, reportURL)
		if err != nil {
			return err
		}
		if result == nil {
			return eris.Errorf("no stored result for %s; run analyze --save first", reportURL)
		}

		if reportOut == "" {
			return report.WriteMarkdown(os.Stdout, result)
		}

		path := reportOut
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, reportFileName(reportURL))
		}
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create report file")
		}
		defer f.Close()
		if err := report.WriteMarkdown(f, result); err != nil {
			return eris.Wrap(err, "write report")
		}
		zap.L().Info("report written", zap.String("path", path))
		return nil
	},
}

// reportFileName derives a filesystem-safe name from the site URL.
func reportFileName(url string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	name = strings.NewReplacer("/", "_", ":", "_", "?", "_").Replace(name)
	return strings.Trim(name, "_") + ".md"
}

func init() {
	reportCmd.Flags().StringVar(&reportURL, "url", "", "website URL of a stored result (required)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file or directory (default stdout)")
	_ = reportCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(reportCmd)
}
