package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/fairyhunter13/product-description-generator/internal/config"
	httpopenapi "github.com/fairyhunter13/product-description-generator/internal/http/openapi"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
	"github.com/fairyhunter13/product-description-generator/internal/queue"
	"github.com/fairyhunter13/product-description-generator/internal/store"
)

type App struct {
	Cfg     config.Config
	Store   *store.Store
	Manager *queue.Manager
	closing atomic.Bool
	started time.Time
}

type generateResponse struct {
	RunID    string                `json:"run_id"`
	Products []model.UpdateOutcome `json:"products"`
	Message  string                `json:"message"`
}

type ack struct {
	RunID      string         `json:"run_id"`
	Status     model.RunState `json:"status"`
	QueueDepth int            `json:"queue_depth"`
}

type runView struct {
	model.RunRecord
	QueuePosition int `json:"queue_position,omitempty"`
}

type runList struct {
	Runs []model.RunRecord `json:"runs"`
}

func NewApp(cfg config.Config, st *store.Store, m *queue.Manager) *App {
	return &App{Cfg: cfg, Store: st, Manager: m, started: time.Now()}
}

// StartShutdown rejects new queued runs.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Manager.CloseIntake()
}

func (a *App) generateHandler(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	runID, res, err := a.Manager.RunNow(r.Context(), model.TriggerSync)
	if err != nil {
		status, code := RunErrorStatus(err)
		obs.Named("http").Warnw("generate_failed", "request_id", reqID, "run_id", runID, "status", status, "error", err)
		WriteJSONError(w, r, status, code, err.Error())
		return
	}
	products := res.Products
	if products == nil {
		products = []model.UpdateOutcome{}
	}
	render.JSON(w, r, generateResponse{RunID: runID, Products: products, Message: res.Message})
}

func (a *App) submitRunHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() || a.Manager.IsShuttingDown() {
		WriteJSONError(w, r, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	rec, err := a.Manager.Submit()
	switch {
	case errors.Is(err, queue.ErrQueueFull):
		WriteJSONError(w, r, http.StatusTooManyRequests, "queue_full", "")
		return
	case err != nil:
		WriteJSONError(w, r, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	ac := ack{RunID: rec.ID, Status: rec.State, QueueDepth: a.Manager.QueueDepth()}
	obs.Named("http").Infow("run_accepted",
		"request_id", RequestIDFromContext(r.Context()),
		"run_id", ac.RunID,
		"queue_depth", ac.QueueDepth,
		"worker_count", a.Manager.WorkerCount(),
	)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, ac)
}

func (a *App) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteJSONError(w, r, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	render.JSON(w, r, runList{Runs: a.Store.List(limit)})
}

func (a *App) getRunHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.Store.Get(chi.URLParam(r, "id"))
	if !ok {
		WriteJSONError(w, r, http.StatusNotFound, "not_found", "")
		return
	}
	view := runView{RunRecord: rec}
	if rec.State == model.RunStateQueued {
		view.QueuePosition, _ = a.Manager.Position(rec.ID)
	}
	render.JSON(w, r, view)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	enq, proc, pending := a.Manager.QueueMetrics()
	render.JSON(w, r, map[string]any{
		"status":         "ok",
		"runs_enqueued":  enq,
		"runs_processed": proc,
		"queue_depth":    pending,
		"worker_count":   a.Manager.WorkerCount(),
		"uptime_sec":     time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	render.HTML(w, r, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Product Description Generator API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`)
}
