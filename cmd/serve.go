package main

import (
	"context"
	"encoding/json"
	"errors"
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
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/scaling-cli/internal/engine"
	"github.com/sells-group/scaling-cli/internal/model"
	"github.com/sells-group/scaling-cli/internal/monitoring"
	"github.com/sells-group/scaling-cli/internal/source"
	"github.com/sells-group/scaling-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for cycle triggers and health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		eng, st, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(eng, st),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(eng *engine.Engine, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		snap, err := monitoring.NewCollector(st).Collect(req.Context(), cfg.Monitor.LookbackHours)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Snapshot *monitoring.MetricsSnapshot `json:"snapshot"`
			Alerts   []monitoring.Alert          `json:"alerts"`
		}{snap, monitoring.NewChecker(cfg.Monitor).Evaluate(snap)})
	})

	r.Get("/counters", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, eng.Counters())
	})

	r.Get("/cycles", func(w http.ResponseWriter, req *http.Request) {
		filter := store.CycleFilter{
			Status: model.CycleStatus(req.URL.Query().Get("status")),
		}
		if v := req.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := req.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		cycles, err := st.ListCycles(req.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cycles": cycles})
	})

	r.Get("/cycles/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec, err := st.GetCycle(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Post("/cycle", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Candidates []model.Candidate `json:"candidates"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		if len(body.Candidates) == 0 {
			writeError(w, http.StatusBadRequest, eris.New("candidates are required"))
			return
		}
		if err := source.Validate(body.Candidates); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		// The cycle outlives the request; progress lands in the store.
		go func() {
			summary, err := eng.RunCycle(context.Background(), body.Candidates)
			if err != nil {
				zap.L().Error("api cycle failed", zap.Error(err))
				return
			}
			zap.L().Info("api cycle finished",
				zap.String("status", string(summary.Status)),
				zap.Int("candidates", summary.CandidatesScored),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":     "accepted",
			"candidates": len(body.Candidates),
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
