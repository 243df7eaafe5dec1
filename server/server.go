package server

import (
	"time"

	"campusapp/config"
	"campusapp/metrics"
	"campusapp/storage"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointHealth         = "/health"
	EndPointMetrics        = "/metrics"
	EndPointIncidents      = "/incidents"
	EndPointMyIncidents    = "/incidents/mine"
	EndPointIncident       = "/incidents/:id"
	EndPointIncidentStatus = "/incidents/:id/status"
)

// StartService runs the HTTP service until the process is stopped.
func StartService(cfg *config.Config, h *Handlers) {
	log.Info("Starting the service...")
	metrics.Register()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Reporter-Id"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Stored photos are served statically; the store only keeps URLs.
	router.Static(storage.URLPrefix, h.files.Dir())

	router.GET(EndPointHealth, h.Health)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))
	router.POST(EndPointIncidents, h.CreateIncident)
	router.GET(EndPointIncidents, h.ListIncidents)
	router.GET(EndPointMyIncidents, h.MyIncidents)
	router.PATCH(EndPointIncidentStatus, h.UpdateIncidentStatus)
	router.DELETE(EndPointIncident, h.DeleteIncident)

	router.Run(":" + cfg.Port)
	log.Info("Finished the service. Should not ever being seen.")
}
