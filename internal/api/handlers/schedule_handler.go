// internal/api/handlers/schedule_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/reorder/internal/domain"
	"github.com/andresuchdata/reorder/internal/export"
	"github.com/andresuchdata/reorder/internal/replan"
	"github.com/andresuchdata/reorder/internal/repository"
	"github.com/andresuchdata/reorder/internal/service"
)

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// UploadDemand ingests one or more demand report CSVs
func (h *ScheduleHandler) UploadDemand(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	total := 0
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to open uploaded file")
			continue
		}

		items, err := h.scheduleService.IngestDemand(c.Request.Context(), f)
		f.Close()
		if err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to ingest demand report")
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":    "failed to ingest demand report",
				"filename": file.Filename,
				"details":  err.Error(),
			})
			return
		}
		total += len(items)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "demand reports ingested",
		"files":   len(files),
		"items":   total,
	})
}

// GetItems returns every ingested item
func (h *ScheduleHandler) GetItems(c *gin.Context) {
	items, err := h.scheduleService.ListItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// GenerateAll regenerates schedules for the whole catalog
func (h *ScheduleHandler) GenerateAll(c *gin.Context) {
	var opts service.GenerateOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid options"})
			return
		}
	}

	runs, err := h.scheduleService.GenerateAll(c.Request.Context(), &opts)
	if err != nil {
		if errors.Is(err, replan.ErrInvalidParameter) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate schedules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": len(runs)})
}

// GenerateForSKU regenerates the schedule for one item
func (h *ScheduleHandler) GenerateForSKU(c *gin.Context) {
	sku := c.Param("sku")

	var opts service.GenerateOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid options"})
			return
		}
	}

	run, err := h.scheduleService.GenerateForSKU(c.Request.Context(), sku, &opts)
	if err != nil {
		h.respondScheduleError(c, sku, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// Simulate runs a what-if simulation from inputs in the request body
func (h *ScheduleHandler) Simulate(c *gin.Context) {
	var inputs domain.ReplenishmentInputs
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inputs"})
		return
	}

	if inputs.StartDate.IsZero() {
		inputs.StartDate = time.Now().UTC()
	}

	run, err := h.scheduleService.GenerateFromInputs(c.Request.Context(), inputs)
	if err != nil {
		h.respondScheduleError(c, inputs.VariantSKU, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetSchedule returns the latest schedule for an item
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	sku := c.Param("sku")

	events, err := h.scheduleService.GetSchedule(c.Request.Context(), sku)
	if err != nil {
		h.respondScheduleError(c, sku, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sku": sku, "events": events})
}

// ExportSchedule streams the latest schedule for an item as CSV
func (h *ScheduleHandler) ExportSchedule(c *gin.Context) {
	sku := c.Param("sku")

	events, err := h.scheduleService.GetSchedule(c.Request.Context(), sku)
	if err != nil {
		h.respondScheduleError(c, sku, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule_%s.csv"`, sku))
	if err := export.WriteSchedule(c.Writer, events); err != nil {
		log.Error().Err(err).Str("sku", sku).Msg("failed to write schedule export")
	}
}

type completionRequest struct {
	ArrivalDate time.Time `json:"arrival_date" binding:"required"`
	Event       string    `json:"event" binding:"required"`
	Completed   bool      `json:"completed"`
}

// SetCompletion marks a schedule event as arrived (or not)
func (h *ScheduleHandler) SetCompletion(c *gin.Context) {
	sku := c.Param("sku")

	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completion request"})
		return
	}

	kind := domain.EventKind(strings.TrimSpace(req.Event))
	if kind != domain.EventInTransitArrival && kind != domain.EventOrderPlaced {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event kind"})
		return
	}

	key := domain.CompletionKey{SKU: sku, ArrivalDate: req.ArrivalDate, Kind: kind}
	if err := h.scheduleService.SetCompletion(c.Request.Context(), key, req.Completed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record completion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sku": sku, "completed": req.Completed})
}

func (h *ScheduleHandler) respondScheduleError(c *gin.Context, sku string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no schedule for sku %s", sku)})
	case errors.Is(err, replan.ErrInvalidParameter):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("sku", sku).Msg("schedule request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
