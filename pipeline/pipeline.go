// Package pipeline implements the incident-ingestion pipeline: validate
// the submission, fetch a bounded window of historical incident texts,
// consult the external moderation service fail-open, and persist the
// incident together with its image references.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"campusapp/metrics"
	"campusapp/server/api"

	"github.com/apex/log"
)

// ContextFetcher returns up to limit historical "title description"
// texts, most recent first.
type ContextFetcher interface {
	RecentTexts(limit int) ([]string, error)
}

// Moderator classifies the current text against historical context.
type Moderator interface {
	Moderate(ctx context.Context, text string, historicalTexts []string) (api.Verdict, error)
}

// Store persists incidents and their image rows.
type Store interface {
	// InsertIncident writes the incident row and fills in Id and CreatedAt.
	InsertIncident(inc *api.Incident) error
	InsertIncidentImage(incidentId int64, imageURL string) error
}

// Pipeline sequences one submission through validation, moderation and
// persistence. Safe for concurrent use; each submission is independent.
type Pipeline struct {
	fetcher   ContextFetcher
	moderator Moderator
	store     Store
	window    int
}

// New creates an ingestion pipeline. window bounds the historical
// context sent to the moderator.
func New(fetcher ContextFetcher, moderator Moderator, store Store, window int) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		moderator: moderator,
		store:     store,
		window:    window,
	}
}

// Ingest runs one submission through the pipeline and returns the
// persisted incident composed with its verdict.
//
// Only two failures reach the caller: a *ValidationError before any
// side effects, or an error from the incident row insert. Moderation is
// advisory; if the context fetch or the moderation call fails the
// neutral verdict is applied and the submission proceeds. A failed
// image row insert drops that image and keeps the incident.
func (p *Pipeline) Ingest(ctx context.Context, raw RawSubmission) (*api.IncidentResponse, error) {
	sub, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	verdict := p.moderate(ctx, sub)

	inc := &api.Incident{
		Title:         sub.Title,
		Description:   sub.Description,
		Category:      sub.Category,
		Location:      sub.Location,
		ReporterId:    sub.ReporterId,
		Satisfaction:  sub.Satisfaction,
		Status:        api.StatusPending,
		AiModerated:   true,
		IsToxic:       verdict.IsToxic,
		ToxicityScore: verdict.ToxicityScore,
		IsDuplicate:   verdict.IsDuplicate,
		Images:        []string{},
	}
	if err := p.store.InsertIncident(inc); err != nil {
		log.Errorf("Failed to insert incident: %v", err)
		return nil, fmt.Errorf("inserting incident: %w", err)
	}
	metrics.IncidentsCreatedTotal.Inc()

	for _, url := range sub.ImageURLs {
		if err := p.store.InsertIncidentImage(inc.Id, url); err != nil {
			// The incident itself must not be lost; drop the image row
			// and keep going with the rest.
			log.Errorf("Failed to insert image %s for incident %d: %v", url, inc.Id, err)
			metrics.AttachmentWritesDroppedTotal.Inc()
			continue
		}
		inc.Images = append(inc.Images, url)
	}

	return &api.IncidentResponse{Incident: *inc, AiAnalysis: verdict}, nil
}

// moderate fetches historical context and calls the moderation service.
// Every failure path falls open to the neutral verdict: an outage of
// the advisory subsystem must never block incident submission.
func (p *Pipeline) moderate(ctx context.Context, sub Submission) api.Verdict {
	texts, err := p.fetcher.RecentTexts(p.window)
	if err != nil {
		log.Warnf("Failed to fetch moderation context, proceeding without analysis: %v", err)
		metrics.ModerationRequestsTotal.WithLabelValues("skipped").Inc()
		return api.Verdict{}
	}

	start := time.Now()
	verdict, err := p.moderator.Moderate(ctx, sub.Title+" "+sub.Description, texts)
	metrics.ModerationDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warnf("Moderation service unavailable, proceeding without analysis: %v", err)
		metrics.ModerationRequestsTotal.WithLabelValues("failed").Inc()
		return api.Verdict{}
	}
	metrics.ModerationRequestsTotal.WithLabelValues("ok").Inc()
	return verdict
}
