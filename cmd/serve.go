package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/model"
	"github.com/sells-group/audit-cli/internal/pipeline"
	"github.com/sells-group/audit-cli/internal/report"
	"github.com/sells-group/audit-cli/internal/store"
)

var servePort int

// analyzeRunner is the slice of the pipeline the server needs.
type analyzeRunner interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		router := newRouter(pipeline.New(cfg), st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(analyzer analyzeRunner, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			URL     string `json:"url"`
			Modules string `json:"modules"`
			Depth   int    `json:"depth"`
			Save    bool   `json:"save"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		if body.Modules == "" {
			body.Modules = "all"
		}
		modules, err := parseModules(body.Modules)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		analysisReq := requestTemplate(modules, body.Depth)
		analysisReq.URL = body.URL

		result, err := analyzer.Analyze(req.Context(), analysisReq)
		if err != nil {
			zap.L().Error("analysis failed", zap.String("url", body.URL), zap.Error(err))
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if body.Save {
			if err := st.SaveResult(req.Context(), result); err != nil {
				zap.L().Error("save result failed", zap.String("url", body.URL), zap.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/results", func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query()
		filter := store.ResultFilter{
			Grade:    query.Get("grade"),
			Industry: query.Get("industry"),
		}
		if minScore := query.Get("min_score"); minScore != "" {
			filter.MinScore, _ = strconv.Atoi(minScore)
		}
		if limit := query.Get("limit"); limit != "" {
			filter.Limit, _ = strconv.Atoi(limit)
		}

		records, err := st.ListResults(req.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	r.Get("/result", func(w http.ResponseWriter, req *http.Request) {
		url := req.URL.Query().Get("url")
		if url == "" {
			writeError(w, http.StatusBadRequest, "url query parameter is required")
			return
		}
		result, err := st.GetResult(req.Context(), url)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if result == nil {
			writeError(w, http.StatusNotFound, "no result for "+url)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/report", func(w http.ResponseWriter, req *http.Request) {
		url := req.URL.Query().Get("url")
		if url == "" {
			writeError(w, http.StatusBadRequest, "url query parameter is required")
			return
		}
		result, err := st.GetResult(req.Context(), url)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if result == nil {
			writeError(w, http.StatusNotFound, "no result for "+url)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_ = report.WriteMarkdown(w, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
