package dtos

import "github.com/justsurfingit/jacker/internal/models"

// TrackJobRequest is what the browser extension sends. Both fields may also
// arrive as query parameters.
type TrackJobRequest struct {
	URL   string `json:"url" form:"url"`
	Title string `json:"title" form:"title"`
}

type TrackJobResponse struct {
	Success        bool                  `json:"success"`
	ID             string                `json:"id"`
	Data           *models.TrackedJob    `json:"data"`
	Message        string                `json:"message"`
	AnalysisMethod models.AnalysisMethod `json:"analysisMethod"`
	Warning        string                `json:"warning,omitempty"`
}

type ListJobsResponse struct {
	Success bool                `json:"success"`
	Jobs    []models.TrackedJob `json:"jobs"`
	Count   int                 `json:"count"`
}

type UpdateStatusRequest struct {
	Status *models.JobStatus `json:"status" binding:"required"`
}

type UpdateStatusResponse struct {
	Success bool             `json:"success"`
	ID      string           `json:"id"`
	Status  models.JobStatus `json:"status"`
}

type StatsResponse struct {
	Success    bool `json:"success"`
	Total      int  `json:"total"`
	ThisWeek   int  `json:"thisWeek"`
	Today      int  `json:"today"`
	Interviews int  `json:"interviews"`
}

// ErrorResponse is the failure envelope for every route.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
