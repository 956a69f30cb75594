package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for enrichment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		tasks := make(chan enrichTask, cfg.Server.QueueSize)
		go runEnrichWorker(ctx, env, tasks)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, tasks),
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
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

// enrichTask is one queued enrichment handed from the webhook endpoint to
// the background worker.
type enrichTask struct {
	contact model.Contact
	domains []model.Domain
}

// runEnrichWorker drains the task queue until the context is cancelled or
// the channel is closed. Failures are logged and never stop the worker.
func runEnrichWorker(ctx context.Context, env *appEnv, tasks <-chan enrichTask) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			result, err := enrichContact(ctx, env, task.contact, task.domains)
			if err != nil {
				zap.L().Error("queued enrichment failed",
					zap.String("contact_id", task.contact.ID),
					zap.Error(err),
				)
				continue
			}
			zap.L().Info("queued enrichment complete",
				zap.String("contact_id", task.contact.ID),
				zap.Int("queries", result.QueriesExecuted),
			)
		}
	}
}

// newRouter builds the HTTP API.
func newRouter(env *appEnv, tasks chan<- enrichTask) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/enrich", handleEnrich(env))
	r.Post("/webhook/enrich", handleWebhookEnrich(env, tasks))
	r.Get("/v1/runs", handleListRuns(env))
	r.Get("/v1/contacts/{id}/scores", handleListScores(env))

	return r
}

// enrichRequest is the body accepted by both enrich endpoints. Either an
// existing contact ID or inline contact fields must be supplied.
type enrichRequest struct {
	ContactID string         `json:"contact_id"`
	Contact   *model.Contact `json:"contact"`
	Domains   []string       `json:"domains"`
}

// resolveContact loads the requested contact, upserting inline contact
// data when no ID was given.
func resolveContact(ctx context.Context, env *appEnv, req enrichRequest) (*model.Contact, error) {
	if req.ContactID != "" {
		return env.Store.GetContact(ctx, req.ContactID)
	}
	if req.Contact != nil {
		return env.Store.UpsertContact(ctx, *req.Contact)
	}
	return nil, eris.New("contact_id or contact is required")
}

// handleEnrich runs enrichment synchronously and returns the result.
func handleEnrich(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrichRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		domains, err := parseDomains(req.Domains)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		contact, err := resolveContact(r.Context(), env, req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := enrichContact(r.Context(), env, *contact, domains)
		if err != nil {
			zap.L().Error("enrichment failed",
				zap.String("contact_id", contact.ID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "enrichment failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// handleWebhookEnrich accepts the request and hands it to the background
// worker, for callers that cannot wait on research latency.
func handleWebhookEnrich(env *appEnv, tasks chan<- enrichTask) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrichRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		domains, err := parseDomains(req.Domains)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		contact, err := resolveContact(r.Context(), env, req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		select {
		case tasks <- enrichTask{contact: *contact, domains: domains}:
		default:
			writeError(w, http.StatusServiceUnavailable, "enrichment queue full")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":     "accepted",
			"contact_id": contact.ID,
		})
	}
}

func handleListRuns(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))

		runs, err := env.Store.ListRuns(r.Context(), store.RunFilter{
			ContactID: q.Get("contact_id"),
			Status:    model.RunStatus(q.Get("status")),
			Limit:     limit,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleListScores(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores, err := env.Store.ListScores(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list scores failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
