package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"linkscraper/internal/middleware"
)

type PageRepo interface {
	Count(ctx context.Context) (int, error)
}

type LinkRepo interface {
	Count(ctx context.Context) (int, error)
}

type JobRepo interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	pageRepo PageRepo
	linkRepo LinkRepo
	jobRepo  JobRepo
}

func NewHandler(p PageRepo, l LinkRepo, j JobRepo) *Handler {
	return &Handler{pageRepo: p, linkRepo: l, jobRepo: j}
}

type StatsResponse struct {
	Pages      int `json:"pages"`
	Links      int `json:"links"`
	FailedJobs int `json:"failed_jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pCount, err := h.pageRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count pages", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count pages", http.StatusInternalServerError)
		return
	}

	lCount, err := h.linkRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count links", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count links", http.StatusInternalServerError)
		return
	}

	jCount, err := h.jobRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Pages:      pCount,
		Links:      lCount,
		FailedJobs: jCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
