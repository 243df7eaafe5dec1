// Package db is the incident store: plain single-row inserts for
// incidents and their image rows, the recent-texts window used as
// moderation context, and the narrow triage queries.
package db

import (
	"database/sql"
	"strings"
	"time"

	"campusapp/common"
	"campusapp/server/api"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// IncidentStore wraps the incident database.
type IncidentStore struct {
	db *sql.DB
}

// NewIncidentStore creates a store over an open connection pool.
func NewIncidentStore(db *sql.DB) *IncidentStore {
	return &IncidentStore{db: db}
}

// CreateTables creates the incident tables if they do not exist.
func (s *IncidentStore) CreateTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS incidents (
	  id INT NOT NULL AUTO_INCREMENT,
	  title VARCHAR(255) NOT NULL,
	  description TEXT NOT NULL,
	  category VARCHAR(64) NOT NULL,
	  location VARCHAR(255) NOT NULL,
	  reporter_id VARCHAR(255),
	  satisfaction TINYINT,
	  status ENUM('pending', 'in_progress', 'resolved') NOT NULL DEFAULT 'pending',
	  ai_moderated BOOLEAN NOT NULL DEFAULT FALSE,
	  is_toxic BOOLEAN NOT NULL DEFAULT FALSE,
	  toxicity_score FLOAT NOT NULL DEFAULT 0,
	  is_duplicate BOOLEAN NOT NULL DEFAULT FALSE,
	  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  PRIMARY KEY (id),
	  INDEX created_at_index (created_at)
	)`)
	if err != nil {
		log.Errorf("Failed to create incidents table: %v", err)
		return err
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS incident_images (
	  id INT NOT NULL AUTO_INCREMENT,
	  incident_id INT NOT NULL,
	  image_url VARCHAR(512) NOT NULL,
	  PRIMARY KEY (id),
	  INDEX incident_id_index (incident_id)
	)`)
	if err != nil {
		log.Errorf("Failed to create incident_images table: %v", err)
		return err
	}
	return nil
}

// InsertIncident writes one incident row and fills in the assigned id
// and creation timestamp. No upsert, no dedup: resubmitting identical
// content creates a second row.
func (s *IncidentStore) InsertIncident(inc *api.Incident) error {
	createdAt := time.Now().UTC().Truncate(time.Second)
	result, err := s.db.Exec(`INSERT
	  INTO incidents (title, description, category, location, reporter_id, satisfaction,
	                  status, ai_moderated, is_toxic, toxicity_score, is_duplicate, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inc.Title, inc.Description, inc.Category, inc.Location, inc.ReporterId, inc.Satisfaction,
		inc.Status, inc.AiModerated, inc.IsToxic, inc.ToxicityScore, inc.IsDuplicate, createdAt)
	common.LogResult("insertIncident", result, err, true)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	inc.Id = id
	inc.CreatedAt = createdAt
	return nil
}

// InsertIncidentImage writes one image row for an existing incident.
func (s *IncidentStore) InsertIncidentImage(incidentId int64, imageURL string) error {
	result, err := s.db.Exec(`INSERT
	  INTO incident_images (incident_id, image_url)
	  VALUES (?, ?)`, incidentId, imageURL)
	common.LogResult("insertIncidentImage", result, err, true)
	return err
}

// RecentTexts returns the combined title+description of the most recent
// incidents, newest first, capped at limit. Used as comparison corpus
// for the moderation service; all history is eligible regardless of
// reporter, category or status.
func (s *IncidentStore) RecentTexts(limit int) ([]string, error) {
	rows, err := s.db.Query(`SELECT title, description
	  FROM incidents
	  ORDER BY created_at DESC
	  LIMIT ?`, limit)
	if err != nil {
		log.Errorf("Could not retrieve recent incident texts: %v", err)
		return nil, err
	}
	defer rows.Close()

	texts := make([]string, 0, limit)
	for rows.Next() {
		var title, description string
		if err := rows.Scan(&title, &description); err != nil {
			log.Errorf("Cannot scan an incident text row: %v", err)
			continue
		}
		texts = append(texts, title+" "+description)
	}
	return texts, rows.Err()
}

// ListIncidents returns all incidents with their image URLs, newest
// first. When reporterId is non-empty only that reporter's incidents
// are returned.
func (s *IncidentStore) ListIncidents(reporterId string) ([]api.Incident, error) {
	query := `SELECT i.id, i.title, i.description, i.category, i.location,
	    i.reporter_id, i.satisfaction, i.status,
	    i.ai_moderated, i.is_toxic, i.toxicity_score, i.is_duplicate, i.created_at,
	    COALESCE(GROUP_CONCAT(ii.image_url ORDER BY ii.id SEPARATOR '|'), '')
	  FROM incidents i
	  LEFT JOIN incident_images ii ON i.id = ii.incident_id`
	args := []any{}
	if reporterId != "" {
		query += `
	  WHERE i.reporter_id = ?`
		args = append(args, reporterId)
	}
	query += `
	  GROUP BY i.id
	  ORDER BY i.created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Errorf("Could not retrieve incidents: %v", err)
		return nil, err
	}
	defer rows.Close()

	incidents := []api.Incident{}
	for rows.Next() {
		var (
			inc          api.Incident
			reporter     sql.NullString
			satisfaction sql.NullInt64
			images       string
		)
		if err := rows.Scan(&inc.Id, &inc.Title, &inc.Description, &inc.Category, &inc.Location,
			&reporter, &satisfaction, &inc.Status,
			&inc.AiModerated, &inc.IsToxic, &inc.ToxicityScore, &inc.IsDuplicate, &inc.CreatedAt,
			&images); err != nil {
			log.Errorf("Cannot scan an incident row: %v", err)
			continue
		}
		if reporter.Valid {
			inc.ReporterId = &reporter.String
		}
		if satisfaction.Valid {
			v := int(satisfaction.Int64)
			inc.Satisfaction = &v
		}
		inc.Images = []string{}
		if images != "" {
			inc.Images = strings.Split(images, "|")
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// UpdateIncidentStatus moves an incident to a new triage status. The
// bool result reports whether the incident existed.
func (s *IncidentStore) UpdateIncidentStatus(id int64, status string) (bool, error) {
	result, err := s.db.Exec(`UPDATE incidents SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		log.Errorf("Failed to update status of incident %d: %v", id, err)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}
	// MySQL reports 0 affected rows when the status did not change;
	// distinguish that from a missing incident.
	var exists bool
	if err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM incidents WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteIncident removes an incident and its image rows. The bool
// result reports whether the incident existed.
func (s *IncidentStore) DeleteIncident(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM incidents WHERE id = ?`, id)
	if err != nil {
		log.Errorf("Failed to delete incident %d: %v", id, err)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}
	if _, err := s.db.Exec(`DELETE FROM incident_images WHERE incident_id = ?`, id); err != nil {
		log.Errorf("Failed to delete images of incident %d: %v", id, err)
	}
	return true, nil
}
