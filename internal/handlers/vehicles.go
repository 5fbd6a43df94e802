package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealerscraper/internal/database"
	"dealerscraper/internal/models"
	"dealerscraper/internal/scraper"
	"dealerscraper/internal/snapshot"
	"dealerscraper/internal/util"
)

// ScrapeRunner is the slice of the scraper the refresh endpoint needs.
type ScrapeRunner interface {
	Run(ctx context.Context, opts scraper.Options) models.RunResult
}

type VehicleHandler struct {
	db           *database.Database
	runner       ScrapeRunner
	source       string
	snapshotPath string
}

// NewVehicleHandler wires the store and scraper behind the read API. The
// runner may be nil, in which case the refresh endpoint reports unavailable.
func NewVehicleHandler(db *database.Database, runner ScrapeRunner, source, snapshotPath string) *VehicleHandler {
	return &VehicleHandler{
		db:           db,
		runner:       runner,
		source:       source,
		snapshotPath: snapshotPath,
	}
}

// ListVehicles returns all active vehicles
// @Summary List active vehicles
// @Description Returns every active vehicle for the configured source
// @Tags vehicles
// @Produce json
// @Param source query string false "Override the source to list"
// @Success 200 {array} models.VehicleRecord
// @Failure 500 {object} map[string]string "error: Failed to load vehicles"
// @Router /api/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		source = h.source
	}

	vehicles, err := h.db.ActiveVehicles(source)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load vehicles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source":   source,
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// GetVehicle returns one vehicle with its images
// @Summary Get a vehicle by id
// @Tags vehicles
// @Produce json
// @Param id path int true "Vehicle id"
// @Success 200 {object} models.VehicleRecord
// @Failure 400 {object} map[string]string "error: Invalid vehicle id"
// @Failure 404 {object} map[string]string "error: Vehicle not found"
// @Router /api/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id"})
		return
	}

	vehicle, err := h.db.GetVehicle(id)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load vehicle", err)
		return
	}
	if vehicle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	images, err := h.db.VehicleImages(id)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load vehicle images", err)
		return
	}
	vehicle.Images = images

	c.JSON(http.StatusOK, vehicle)
}

// SnapshotStatus reports the snapshot file's age and size
// @Summary Snapshot status
// @Tags vehicles
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "error: No snapshot yet"
// @Router /api/snapshot-status [get]
func (h *VehicleHandler) SnapshotStatus(c *gin.Context) {
	snap, err := snapshot.Read(h.snapshotPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot yet"})
		return
	}

	age, _ := snapshot.Age(h.snapshotPath)

	c.JSON(http.StatusOK, gin.H{
		"generatedAt": snap.GeneratedAt,
		"source":      snap.Source,
		"count":       snap.Count,
		"ageSeconds":  int(age.Seconds()),
	})
}

// Refresh triggers a scrape run
// @Summary Trigger a scrape run
// @Description Runs the full pipeline and returns the run result. Throttled to one run per interval.
// @Tags vehicles
// @Produce json
// @Success 200 {object} models.RunResult
// @Failure 429 {object} map[string]string "error: Refresh too frequent"
// @Failure 503 {object} map[string]string "error: Scraper not configured"
// @Router /api/refresh [post]
func (h *VehicleHandler) Refresh(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scraper not configured"})
		return
	}

	result := h.runner.Run(c.Request.Context(), scraper.Options{})
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// Health is a liveness probe
// @Summary Health check
// @Tags vehicles
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func (h *VehicleHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
