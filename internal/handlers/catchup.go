package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/services"
)

type CatchUpHandler struct {
	svc services.CatchUpPlanner
}

func NewCatchUpHandler(svc services.CatchUpPlanner) *CatchUpHandler {
	return &CatchUpHandler{svc: svc}
}

type redistributeRequest struct {
	MaxSessions int        `json:"max_sessions"`
	From        *time.Time `json:"from,omitempty"`
}

// GET /api/children/:id/catchup
func (h *CatchUpHandler) Queue(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.svc.Queue(c.Request.Context(), childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

// POST /api/children/:id/catchup/redistribute
func (h *CatchUpHandler) Redistribute(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req redistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	from := time.Now()
	if req.From != nil {
		from = *req.From
	}
	report, err := h.svc.Redistribute(c.Request.Context(), childID, req.MaxSessions, from)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}
