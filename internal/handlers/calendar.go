package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/services"
)

type CalendarHandler struct {
	svc services.CalendarService
}

func NewCalendarHandler(svc services.CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

// POST /api/children/:id/blocks
func (h *CalendarHandler) CreateBlock(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var in services.TimeBlockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	block, err := h.svc.CreateTimeBlock(c.Request.Context(), childID, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"block": block})
}

// PUT /api/blocks/:id
func (h *CalendarHandler) UpdateBlock(c *gin.Context) {
	blockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var in services.TimeBlockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	block, err := h.svc.UpdateTimeBlock(c.Request.Context(), blockID, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"block": block})
}

// DELETE /api/blocks/:id
func (h *CalendarHandler) DeleteBlock(c *gin.Context) {
	blockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.svc.DeleteTimeBlock(c.Request.Context(), blockID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": blockID})
}

// GET /api/children/:id/blocks
func (h *CalendarHandler) ListBlocks(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	blocks, err := h.svc.ListTimeBlocks(c.Request.Context(), childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"blocks": blocks})
}

// POST /api/children/:id/calendar/import
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	report, err := h.svc.ImportICS(c.Request.Context(), childID, body)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"report": report})
}

// GET /api/children/:id/events
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	events, err := h.svc.ListImportedEvents(c.Request.Context(), childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

// DELETE /api/events/:id
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.svc.DeleteImportedEvent(c.Request.Context(), eventID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": eventID})
}

// GET /api/children/:id/occurrences
func (h *CalendarHandler) Occurrences(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	listing, err := h.svc.Occurrences(c.Request.Context(), childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, listing)
}
