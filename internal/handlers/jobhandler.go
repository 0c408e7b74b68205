package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jacker/internal/dashboard"
	"github.com/justsurfingit/jacker/internal/dtos"
	"github.com/justsurfingit/jacker/internal/models"
	"github.com/justsurfingit/jacker/internal/services"
	"go.uber.org/zap"
)

const (
	msgAIEnhanced      = "Job analyzed with AI"
	msgBasic           = "Job tracked successfully"
	msgRecovered       = "Job tracked with basic info (analysis failed)"
	warnAnalysisFailed = "Analysis services unavailable"
)

type JobHandler struct {
	Ingestion    *services.IngestionService
	Store        services.JobStore
	TrackTimeout time.Duration
	Logger       *zap.Logger

	// now is swapped in tests
	now func() time.Time
}

func NewJobHandler(ingestion *services.IngestionService, store services.JobStore, trackTimeout time.Duration, log *zap.Logger) *JobHandler {
	return &JobHandler{
		Ingestion:    ingestion,
		Store:        store,
		TrackTimeout: trackTimeout,
		Logger:       log.With(zap.String("component", "handler")),
		now:          time.Now,
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TrackJob is GET|POST /track-job. POST reads a JSON body and falls back to
// the query string for anything the body leaves empty.
func (h *JobHandler) TrackJob(c *gin.Context) {
	var req dtos.TrackJobRequest

	// Chunked requests report ContentLength -1, so an empty body shows up as EOF.
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error()})
			return
		}
	}
	if req.URL == "" {
		req.URL = c.Query("url")
	}
	if req.Title == "" {
		req.Title = c.Query("title")
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "URL is required"})
		return
	}

	ctx := c.Request.Context()
	if h.TrackTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.TrackTimeout)
		defer cancel()
	}

	res, err := h.Ingestion.Track(ctx, services.TrackRequest{URL: req.URL, Title: req.Title})
	if err != nil {
		h.Logger.Error("track job failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to track job: " + err.Error()})
		return
	}

	resp := dtos.TrackJobResponse{
		Success:        true,
		ID:             res.Job.ID,
		Data:           res.Job,
		AnalysisMethod: res.Method,
	}
	switch {
	case res.Recovered:
		resp.Message = msgRecovered
		resp.Warning = warnAnalysisFailed
	case res.Method == models.AnalysisAIEnhanced:
		resp.Message = msgAIEnhanced
	default:
		resp.Message = msgBasic
	}
	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Store.ListAll(c.Request.Context())
	if err != nil {
		h.Logger.Error("list jobs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to list jobs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos.ListJobsResponse{Success: true, Jobs: jobs, Count: len(jobs)})
}

// UpdateStatus is PATCH /jobs/:id/status.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req dtos.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error()})
		return
	}
	status := *req.Status
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid status: " + string(status)})
		return
	}

	if err := h.Store.UpdateStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, dtos.ErrorResponse{Error: "Job not found: " + id})
			return
		}
		h.Logger.Error("update status failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to update status: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos.UpdateStatusResponse{Success: true, ID: id, Status: status})
}

func (h *JobHandler) Stats(c *gin.Context) {
	board := dashboard.NewBoard(h.Store)
	if err := board.Load(c.Request.Context()); err != nil {
		h.Logger.Error("load stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to load stats: " + err.Error()})
		return
	}
	st := board.Stats(h.now())
	c.JSON(http.StatusOK, dtos.StatsResponse{
		Success:    true,
		Total:      st.Total,
		ThisWeek:   st.ThisWeek,
		Today:      st.Today,
		Interviews: st.Interviews,
	})
}
