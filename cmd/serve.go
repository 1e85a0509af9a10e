package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zoning-cli/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/reports", func(w http.ResponseWriter, req *http.Request) {
		var body report.GenerateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := env.Generator.GenerateReport(req.Context(), body)
		if err != nil {
			if report.IsValidationError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			zap.L().Error("report generation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "report generation failed")
			return
		}

		writeJSON(w, http.StatusCreated, result)
	})

	r.Post("/reports/assemblage", func(w http.ResponseWriter, req *http.Request) {
		var body report.AssemblageRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := env.Generator.GenerateAssemblageReport(req.Context(), body)
		if err != nil {
			if report.IsValidationError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			zap.L().Error("assemblage generation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "report generation failed")
			return
		}

		writeJSON(w, http.StatusCreated, result)
	})

	r.Get("/reports/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")

		rep, err := env.Store.GetReport(req.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}

		results, err := env.Store.ListResults(req.Context(), id)
		if err != nil {
			zap.L().Error("list results failed", zap.String("report_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load results")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"report":  rep,
			"results": results,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
