package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/service"
	"curaframe/internal/population"
	dErrors "curaframe/pkg/domain-errors"
	"curaframe/pkg/platform/httputil"
	"curaframe/pkg/requestcontext"
)

// MaxHistoryLimit caps the limit query parameter on history reads.
const MaxHistoryLimit = 1000

// Service defines the evaluation operations the handler exposes.
type Service interface {
	Evaluate(ctx context.Context, req service.Request) (*evaluation.Result, error)
	EvaluateBatch(ctx context.Context, reqs []service.Request) ([]*evaluation.Result, error)
	History(ctx context.Context, candidateName string, limit int) ([]*evaluation.Result, error)
	Stats(ctx context.Context) (evaluation.Stats, error)
	AddPopulation(ctx context.Context, name string, modifiers population.Modifiers) error
	ResetHistory(ctx context.Context)
	Engine() *evaluation.Engine
}

// Handler wires evaluation endpoints to the evaluation service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an evaluation handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts evaluation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/evaluations", h.HandleEvaluate)
	r.Post("/evaluations/batch", h.HandleEvaluateBatch)
	r.Get("/evaluations", h.HandleHistory)
	r.Delete("/evaluations", h.HandleResetHistory)
	r.Get("/evaluations/stats", h.HandleStats)
	r.Get("/constraints", h.HandleExport)
	r.Get("/constraints/{name}", h.HandleGetConstraint)
	r.Get("/populations", h.HandleListPopulations)
	r.Post("/populations", h.HandleRegisterPopulation)
}

// HandleEvaluate handles POST /evaluations requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.ToServiceRequest(requestID))
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestID,
			"candidate", req.Candidate.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "evaluation served",
		"request_id", requestID,
		"candidate", result.CandidateName,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleEvaluateBatch handles POST /evaluations/batch requests.
func (h *Handler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reqs := make([]service.Request, len(req.Requests))
	for i := range req.Requests {
		reqs[i] = req.Requests[i].ToServiceRequest(requestID)
	}
	results, err := h.service.EvaluateBatch(ctx, reqs)
	if err != nil {
		h.logger.ErrorContext(ctx, "batch evaluation failed",
			"request_id", requestID,
			"size", len(reqs),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BatchResponse{Results: fromResults(results)})
}

// HandleHistory handles GET /evaluations?candidate=&limit= requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	results, err := h.service.History(ctx, r.URL.Query().Get("candidate"), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{Results: fromResults(results), Count: len(results)})
}

// HandleResetHistory handles DELETE /evaluations requests. Only the
// engine's in-memory history is cleared.
func (h *Handler) HandleResetHistory(w http.ResponseWriter, r *http.Request) {
	h.service.ResetHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// HandleStats handles GET /evaluations/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, struct {
		evaluation.Stats
		AcceptanceRate float64 `json:"acceptance_rate"`
	}{stats, stats.AcceptanceRate()})
}

// HandleExport handles GET /constraints requests.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Engine().Export())
}

// HandleGetConstraint handles GET /constraints/{name} requests.
func (h *Handler) HandleGetConstraint(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, ok := h.service.Engine().Constraint(name)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "constraint '"+name+"' not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ConstraintResponse{
		ExportedConstraint: evaluation.ExportConstraint(c),
		Comparator:         c.Comparator.Name(),
		ThresholdDetail:    c.Threshold,
	})
}

// HandleListPopulations handles GET /populations requests.
func (h *Handler) HandleListPopulations(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, PopulationsResponse{Populations: h.service.Engine().Populations()})
}

// HandleRegisterPopulation handles POST /populations requests.
func (h *Handler) HandleRegisterPopulation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterPopulationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	mods, err := req.ParsedModifiers()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.AddPopulation(ctx, req.Name, mods); err != nil {
		h.logger.WarnContext(ctx, "population registration rejected",
			"request_id", requestID,
			"population", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "population registered",
		"request_id", requestID,
		"population", req.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, PopulationsResponse{Populations: h.service.Engine().Populations()})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer")
	}
	if n > MaxHistoryLimit {
		return 0, dErrors.New(dErrors.CodeValidation, "limit must be at most "+strconv.Itoa(MaxHistoryLimit))
	}
	return n, nil
}
