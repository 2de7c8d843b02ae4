// Package api holds the REST handlers under /api/v1.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/insight/internal/api/job"
	"github.com/newthinker/insight/internal/api/response"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/storage/analysis"
)

// Pipeline runs a full analysis and persists the result. Implemented by
// app.App.
type Pipeline interface {
	Analyze(ctx context.Context, ticker string) (*core.AnalysisPayload, error)
}

// JobsGauge tracks the number of active jobs. Implemented by
// metrics.Registry; may be nil.
type JobsGauge interface {
	SetJobsActive(jobType string, n int)
}

// AnalysesHandler handles analysis trigger and retrieval requests.
type AnalysesHandler struct {
	pipeline Pipeline
	store    analysis.Store
	jobs     *job.Store
	gauge    JobsGauge
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(pipeline Pipeline, store analysis.Store, jobs *job.Store, gauge JobsGauge) *AnalysesHandler {
	return &AnalysesHandler{pipeline: pipeline, store: store, jobs: jobs, gauge: gauge}
}

// Trigger starts an async analysis for a ticker and returns the job id.
func (h *AnalysesHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
	if ticker == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrTickerNotFound, errors.New("ticker path segment required")))
		return
	}

	j := h.jobs.Create("analysis", ticker)
	h.trackActive()

	go h.run(j.ID, ticker)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"ticker": ticker,
		"status": j.Status,
	})
}

// run executes the analysis in the background, detached from the request.
func (h *AnalysesHandler) run(jobID, ticker string) {
	h.jobs.Update(jobID, func(j *job.Job) { j.Status = job.StatusRunning })

	payload, err := h.pipeline.Analyze(context.Background(), ticker)

	h.jobs.Update(jobID, func(j *job.Job) {
		if err != nil {
			j.Status = job.StatusFailed
			var coreErr *core.Error
			if errors.As(err, &coreErr) {
				j.Error = coreErr
			} else {
				j.Error = core.WrapError(core.ErrAnalyzerFailed, err)
			}
			return
		}
		j.Status = job.StatusComplete
		j.Result = map[string]any{
			"analysis_id": payload.ID,
			"ticker":      payload.Ticker,
		}
	})
	h.trackActive()
}

func (h *AnalysesHandler) trackActive() {
	if h.gauge != nil {
		h.gauge.SetJobsActive("analysis", h.jobs.ActiveCount())
	}
}

// Latest returns the most recent stored payload for a ticker.
func (h *AnalysesHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	payload, err := h.store.Latest(r.Context(), ticker)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, payload)
}

// GetByID returns a stored payload by analysis id.
func (h *AnalysesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	payload, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, payload)
}

// History returns stored payloads for a ticker, newest first.
func (h *AnalysesHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := analysis.ListFilter{
		Ticker: r.PathValue("ticker"),
		Limit:  50,
	}
	if ct := q.Get("company_type"); ct != "" {
		filter.CompanyType = core.CompanyType(ct)
	}
	if rec := q.Get("recommendation"); rec != "" {
		filter.Recommendation = core.RecommendationLabel(rec)
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = t
		} else if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = t
		} else if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = t
		}
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if offset := q.Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	payloads, err := h.store.List(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	count, _ := h.store.Count(r.Context(), filter)

	response.JSON(w, http.StatusOK, map[string]any{
		"analyses": payloads,
		"total":    count,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}
