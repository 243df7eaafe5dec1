package server

import (
	"errors"
	"net/http"
	"strconv"

	"campusapp/db"
	"campusapp/pipeline"
	"campusapp/rabbitmq"
	"campusapp/server/api"
	"campusapp/storage"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

var allowedStatuses = map[string]bool{
	api.StatusPending:    true,
	api.StatusInProgress: true,
	api.StatusResolved:   true,
}

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	pipe      *pipeline.Pipeline
	store     *db.IncidentStore
	files     *storage.FileStore
	publisher *rabbitmq.Publisher // nil when publishing is disabled
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(pipe *pipeline.Pipeline, store *db.IncidentStore, files *storage.FileStore, publisher *rabbitmq.Publisher) *Handlers {
	return &Handlers{pipe: pipe, store: store, files: files, publisher: publisher}
}

// Health handles liveness checks.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "campusapp",
	})
}

// CreateIncident is the ingestion entry point. It accepts a multipart
// form with the incident fields plus zero or more photos, stores the
// photo bytes, and hands the submission to the pipeline.
func (h *Handlers) CreateIncident(c *gin.Context) {
	var imageURLs []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				log.Errorf("Failed to open uploaded image %s: %v", fh.Filename, err)
				continue
			}
			url, err := h.files.Save(f, fh.Filename)
			f.Close()
			if err != nil {
				log.Errorf("Failed to store uploaded image %s: %v", fh.Filename, err)
				continue
			}
			imageURLs = append(imageURLs, url)
		}
	}

	raw := pipeline.RawSubmission{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Category:     c.PostForm("category"),
		Location:     c.PostForm("location"),
		Satisfaction: c.PostForm("satisfaction"),
		// Set by the auth layer; absent for anonymous submissions.
		ReporterId: c.GetHeader("X-Reporter-Id"),
		ImageURLs:  imageURLs,
	}

	resp, err := h.pipe.Ingest(c.Request.Context(), raw)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			body := gin.H{"message": verr.Error()}
			if len(verr.MissingFields) > 0 {
				body["missing_fields"] = verr.MissingFields
			}
			c.JSON(http.StatusBadRequest, body)
			return
		}
		log.Errorf("Failed to ingest incident: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save the incident."})
		return
	}

	if h.publisher != nil {
		go h.publishIncident(resp)
	}

	c.JSON(http.StatusCreated, resp)
}

// publishIncident notifies downstream consumers about a new incident.
// Fire-and-forget; a publish failure only gets logged.
func (h *Handlers) publishIncident(resp *api.IncidentResponse) {
	if err := h.publisher.Publish(resp.Incident); err != nil {
		log.Errorf("Failed to publish incident %d: %v", resp.Id, err)
	}
}

// ListIncidents returns all incidents, newest first.
func (h *Handlers) ListIncidents(c *gin.Context) {
	incidents, err := h.store.ListIncidents("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list incidents."})
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// MyIncidents returns the calling reporter's incidents, newest first.
func (h *Handlers) MyIncidents(c *gin.Context) {
	reporterId := c.GetHeader("X-Reporter-Id")
	if reporterId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing reporter identity."})
		return
	}
	incidents, err := h.store.ListIncidents(reporterId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list incidents."})
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// UpdateIncidentStatus moves an incident to another triage status.
func (h *Handlers) UpdateIncidentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid incident id."})
		return
	}

	var args api.StatusArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read JSON input."})
		return
	}
	if !allowedStatuses[args.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status."})
		return
	}

	found, err := h.store.UpdateIncidentStatus(id, args.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update the status."})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Incident not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": args.Status})
}

// DeleteIncident removes an incident and its image rows.
func (h *Handlers) DeleteIncident(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid incident id."})
		return
	}

	found, err := h.store.DeleteIncident(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete the incident."})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Incident not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Incident deleted."})
}
