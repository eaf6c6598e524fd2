package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/audit-cli/internal/model"
	"github.com/sells-group/audit-cli/internal/store"
)

// initStore opens and migrates the configured backend.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// parseModules turns a comma-separated module list into flags. "all"
// enables everything; an empty list enables nothing beyond the always-on
// basics.
func parseModules(spec string) (model.ModuleFlags, error) {
	var flags model.ModuleFlags
	if strings.TrimSpace(spec) == "" {
		return flags, nil
	}
	for _, name := range strings.Split(spec, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			return model.AllModules(), nil
		case "industry":
			flags.Industry = true
		case "seo":
			flags.SEO = true
		case "visual":
			flags.Visual = true
		case "competitor":
			flags.Competitor = true
		case "":
		default:
			return flags, eris.Errorf("unknown module %q (valid: industry, seo, visual, competitor, all)", name)
		}
	}
	return flags, nil
}

// requestTemplate builds the shared request fields from config plus the
// per-command depth and module selection.
func requestTemplate(modules model.ModuleFlags, depth int) model.AnalysisRequest {
	if depth <= 0 {
		depth = cfg.Analyze.Depth
	}
	return model.AnalysisRequest{
		Modules: modules,
		Depth:   model.DepthTier(depth),
		Models: model.ModelSelection{
			TextModel:   cfg.Analyze.TextModel,
			VisionModel: cfg.Analyze.VisionModel,
			CheapModel:  cfg.Analyze.CheapModel,
		},
	}
}
