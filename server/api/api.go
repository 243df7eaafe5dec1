// Package api holds the wire types shared between the HTTP layer, the
// ingestion pipeline and the incident store.
package api

import "time"

// Incident statuses. Every incident starts as pending; staff move it
// forward through the triage flow.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Verdict is the moderation subsystem's assessment of a submission.
// When the moderation service is unavailable the pipeline substitutes
// the zero value (fail-open).
type Verdict struct {
	IsToxic       bool    `json:"is_toxic"`
	IsDuplicate   bool    `json:"is_duplicate"`
	ToxicityScore float64 `json:"toxicity_score"`
}

// Incident is one submitted report together with its moderation
// metadata. Id and CreatedAt are assigned by the store on insert.
type Incident struct {
	Id            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	ReporterId    *string   `json:"reporter_id,omitempty"`
	Satisfaction  *int      `json:"satisfaction,omitempty"`
	Status        string    `json:"status"`
	AiModerated   bool      `json:"ai_moderated"`
	IsToxic       bool      `json:"is_toxic"`
	ToxicityScore float64   `json:"toxicity_score"`
	IsDuplicate   bool      `json:"is_duplicate"`
	CreatedAt     time.Time `json:"created_at"`
	Images        []string  `json:"images"`
}

// IncidentResponse is the composed payload returned by the ingestion
// entry point: the persisted incident plus the verdict that was applied
// to it, echoed back for immediate caller feedback.
type IncidentResponse struct {
	Incident
	AiAnalysis Verdict `json:"ai_analysis"`
}

// StatusArgs is the body of a status update request.
type StatusArgs struct {
	Status string `json:"status"`
}
