package models

import (
	"time"
)

// JobStatus is the user-editable progress marker on a tracked job.
type JobStatus string

const (
	StatusNone       JobStatus = ""
	StatusApplied    JobStatus = "applied"
	StatusRejected   JobStatus = "rejected"
	StatusInterview  JobStatus = "interview"
	StatusInProgress JobStatus = "in progress"
)

// Valid reports whether s is one of the known statuses. Empty is allowed.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusNone, StatusApplied, StatusRejected, StatusInterview, StatusInProgress:
		return true
	}
	return false
}

// AnalysisMethod records which degradation tier produced a record.
type AnalysisMethod string

const (
	AnalysisBasic      AnalysisMethod = "basic"
	AnalysisAIEnhanced AnalysisMethod = "ai_enhanced"
)

type TrackedJob struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TrackedAt time.Time `gorm:"not null;index" json:"trackedAt"`

	OriginalURL    string         `gorm:"type:text;not null" json:"originalUrl"`
	JobTitle       string         `json:"jobTitle"`
	CompanyName    string         `json:"companyName"`
	Location       string         `json:"location"`
	Status         JobStatus      `gorm:"type:varchar(32)" json:"status"`
	AnalysisMethod AnalysisMethod `gorm:"type:varchar(32);not null" json:"analysisMethod"`
}

// JobExtraction is the structured answer expected back from the AI service.
type JobExtraction struct {
	CompanyName string `json:"companyName"`
	JobTitle    string `json:"jobTitle"`
	Location    string `json:"location"`
}
