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
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/config"
	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/internal/pipeline"
	"github.com/mahmoudd2003/list/internal/preset"
	"github.com/mahmoudd2003/list/internal/render"
	"github.com/mahmoudd2003/list/internal/store"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for previews and publishing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port

		env, err := initPipeline("serve")
		if err != nil {
			return err
		}
		if cfg.HasWordPress() {
			wp, err := initPublisher()
			if err != nil {
				return err
			}
			env.Publisher = wp
		} else {
			zap.L().Warn("wordpress credentials missing, publish endpoint disabled")
		}
		runs, err := initStore(ctx)
		if err != nil {
			return err
		}
		if runs != nil {
			defer runs.Close()
			env.Runs = runs
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env, cfg.Pipeline),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, srv)
	},
}

// runServer serves until ctx is canceled, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		return nil
	})

	return g.Wait()
}

// previewRequest is the body of POST /v1/preview. A nil MinReviews or a
// zero MaxResults takes the configured default.
type previewRequest struct {
	City       string `json:"city"`
	Category   string `json:"category"`
	Query      string `json:"query"`
	Title      string `json:"title"`
	MaxResults int    `json:"max_results"`
	MinReviews *int   `json:"min_reviews"`
}

type previewResponse struct {
	Run      *model.Run     `json:"run"`
	Document model.Document `json:"document"`
}

// publishRequest is the body of POST /v1/publish. When RunID is set and
// Items is empty, the items of the stored run are published.
type publishRequest struct {
	Title  string       `json:"title"`
	Items  []model.Item `json:"items"`
	PostID int64        `json:"post_id"`
	RunID  uuid.UUID    `json:"run_id"`
}

type presetsResponse struct {
	Cities     []preset.City     `json:"cities"`
	Categories []preset.Category `json:"categories"`
}

// buildRouter wires the HTTP API around env. Publishing answers with a
// config error when env has no publisher.
func buildRouter(env *appEnv, defaults config.PipelineConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/presets", func(w http.ResponseWriter, _ *http.Request) {
			writeJSONResponse(w, http.StatusOK, presetsResponse{
				Cities:     env.Presets.Cities(),
				Categories: env.Presets.Categories(),
			})
		})

		r.Post("/preview", func(w http.ResponseWriter, req *http.Request) {
			var body previewRequest
			if err := decodeBody(w, req, &body); err != nil {
				writeError(w, err)
				return
			}

			fr := pipeline.FetchRequest{
				Query:      body.Query,
				Category:   body.Category,
				City:       body.City,
				MaxResults: body.MaxResults,
				MinReviews: defaults.MinReviews,
			}
			if fr.MaxResults == 0 {
				fr.MaxResults = defaults.MaxResults
			}
			if body.MinReviews != nil {
				fr.MinReviews = *body.MinReviews
			}

			run, err := env.Pipeline.Fetch(req.Context(), fr)
			if err != nil {
				writeError(w, err)
				return
			}
			if env.Runs != nil {
				if err := env.Runs.SaveRun(req.Context(), run); err != nil {
					writeError(w, eris.Wrap(err, "save run"))
					return
				}
			}

			title := body.Title
			if title == "" {
				title = run.Query
			}
			writeJSONResponse(w, http.StatusOK, previewResponse{
				Run:      run,
				Document: render.Render(run.Items, title, time.Now()),
			})
		})

		r.Post("/publish", func(w http.ResponseWriter, req *http.Request) {
			if env.Publisher == nil {
				writeError(w, apperr.NewConfigError("wordpress", "publishing is not configured"))
				return
			}
			var body publishRequest
			if err := decodeBody(w, req, &body); err != nil {
				writeError(w, err)
				return
			}
			if body.PostID < 0 {
				writeError(w, apperr.NewConfigError("post_id", "must not be negative"))
				return
			}

			items := body.Items
			if body.RunID != uuid.Nil {
				if env.Runs == nil {
					writeError(w, apperr.NewConfigError("run_id", "run history is not configured"))
					return
				}
				if len(items) == 0 {
					run, err := env.Runs.GetRun(req.Context(), body.RunID)
					if err != nil {
						writeError(w, err)
						return
					}
					items = run.Items
				}
			}

			post, err := publishDraft(req.Context(), env.Publisher, body.Title, items, body.PostID, time.Now())
			if err != nil {
				writeError(w, err)
				return
			}
			if body.RunID != uuid.Nil {
				if err := env.Runs.MarkPublished(req.Context(), body.RunID, post.ID, post.Link); err != nil {
					writeError(w, err)
					return
				}
			}
			writeJSONResponse(w, http.StatusOK, post)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Use(requireRuns(env))
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				filter, err := parseRunFilter(req)
				if err != nil {
					writeError(w, err)
					return
				}
				runs, err := env.Runs.ListRuns(req.Context(), filter)
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSONResponse(w, http.StatusOK, runs)
			})
			r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
				id, err := uuid.Parse(chi.URLParam(req, "id"))
				if err != nil {
					writeError(w, apperr.NewConfigError("id", "invalid run id"))
					return
				}
				run, err := env.Runs.GetRun(req.Context(), id)
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSONResponse(w, http.StatusOK, run)
			})
		})
	})

	return r
}

// requireRuns answers with a config error when run history is disabled.
func requireRuns(env *appEnv) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if env.Runs == nil {
				writeError(w, apperr.NewConfigError("store", "run history is not configured"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseRunFilter reads city, limit and offset from the query string.
func parseRunFilter(req *http.Request) (store.RunFilter, error) {
	q := req.URL.Query()
	filter := store.RunFilter{City: q.Get("city")}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return store.RunFilter{}, apperr.NewConfigError(name, "must be a non-negative integer")
		}
		*dst = n
	}
	return filter, nil
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.NewConfigError("body", "invalid request body: %v", err)
	}
	return nil
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

// writeError maps err to a status by kind: config 400, missing run 404,
// remote 502, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.Kind(err)
	status := http.StatusInternalServerError
	switch {
	case kind == "config":
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		kind = "not_found"
		status = http.StatusNotFound
	case kind == "remote":
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("kind", kind), zap.Error(err))
	}
	writeJSONResponse(w, status, map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
