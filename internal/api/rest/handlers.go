package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/internal/release"
	"github.com/clintrovert/releasekit/internal/report"
	"github.com/clintrovert/releasekit/pkg/types"
)

// Runner analyzes one release window
type Runner interface {
	Run(ctx context.Context, req release.Request) (*reconcile.Report, error)
}

// Tracker is a configured work tracker and its terminal states
type Tracker struct {
	Runner         Runner
	AcceptedStates []string
}

// Handler handles REST API requests
type Handler struct {
	owner   string
	pivotal *Tracker
	jira    *Tracker
	logger  *zap.Logger
}

// NewHandler creates a new REST handler. Either tracker may be nil when its
// credentials are not configured.
func NewHandler(owner string, pivotal, jira *Tracker, logger *zap.Logger) *Handler {
	return &Handler{
		owner:   owner,
		pivotal: pivotal,
		jira:    jira,
		logger:  logger,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// ReleaseStatus handles GET /repos/{repo}/release-status
func (h *Handler) ReleaseStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owner := q.Get("owner")
	if owner == "" {
		owner = h.owner
	}

	req := release.Request{
		Repo:        types.RepoRef{Owner: owner, Name: chi.URLParam(r, "repo")},
		Base:        q.Get("base"),
		Head:        q.Get("head"),
		WithReviews: q.Get("reviews") == "true",
		Query: types.WorkItemQuery{
			Label:      q.Get("label"),
			Project:    q.Get("project"),
			FixVersion: q.Get("fix_version"),
		},
	}
	if req.Base == "" || req.Head == "" {
		h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "base and head are required"})
		return
	}

	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "detailed" && format != "chat" {
		h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "format must be json, detailed or chat"})
		return
	}

	tracker, status, msg := h.trackerFor(req.Query)
	if tracker == nil {
		h.writeError(w, status, ErrorResponse{Error: msg})
		return
	}
	req.AcceptedStates = tracker.AcceptedStates

	rep, err := tracker.Runner.Run(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	style := report.StyleFor(format == "chat")
	if err := report.Render(w, style, report.ReleaseStatus(rep, req.Query)); err != nil {
		h.logger.Error("failed to write report", zap.Error(err))
	}
}

func (h *Handler) trackerFor(q types.WorkItemQuery) (*Tracker, int, string) {
	switch {
	case q.Label != "" && (q.Project != "" || q.FixVersion != ""):
		return nil, http.StatusBadRequest, "use either label or project and fix_version"
	case q.Label != "":
		if h.pivotal == nil {
			return nil, http.StatusNotImplemented, "pivotal tracker is not configured"
		}
		return h.pivotal, 0, ""
	case q.Project != "" && q.FixVersion != "":
		if h.jira == nil {
			return nil, http.StatusNotImplemented, "jira is not configured"
		}
		return h.jira, 0, ""
	}
	return nil, http.StatusBadRequest, "label or project and fix_version are required"
}

// fail maps an analysis error to a response status
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var upstream *types.UpstreamError
	switch {
	case errors.Is(err, types.ErrUsage):
		h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.As(err, &upstream):
		h.logger.Error("upstream request failed",
			zap.String("service", upstream.Service),
			zap.Int("status", upstream.StatusCode),
			zap.Error(err),
		)
		h.writeError(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), Hint: upstream.Hint()})
	default:
		h.logger.Error("failed to analyze release", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/repos/{repo}/release-status", h.ReleaseStatus)
}

// NewRouter mounts the API under /api/v1 next to a health check
func NewRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return router
}
