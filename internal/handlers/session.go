package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/services"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionRequest struct {
	TopicID          uuid.UUID `json:"topic_id"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
}

type scheduleRequest struct {
	DayOfWeek      int        `json:"day_of_week"`
	StartMinute    int        `json:"start_minute"`
	EndMinute      int        `json:"end_minute"`
	CommitmentType string     `json:"commitment_type"`
	Date           *time.Time `json:"date,omitempty"`
	StrictCapacity bool       `json:"strict_capacity,omitempty"`
}

type skipRequest struct {
	SkipDate time.Time `json:"skip_date"`
	Reason   string    `json:"reason"`
}

type completeRequest struct {
	EvidenceNotes *string    `json:"evidence_notes,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// POST /api/children/:id/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sess, err := h.svc.CreateFromTopic(c.Request.Context(), childID, req.TopicID, req.EstimatedMinutes)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"session": sess})
}

// GET /api/children/:id/sessions
func (h *SessionHandler) ListForChild(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sessions, err := h.svc.ListByChild(c.Request.Context(), childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sess, err := h.svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/plan
func (h *SessionHandler) Plan(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sess, err := h.svc.Plan(c.Request.Context(), sessionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/schedule
func (h *SessionHandler) Schedule(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	slot := services.ScheduleSlot{
		DayOfWeek:      req.DayOfWeek,
		StartMinute:    req.StartMinute,
		EndMinute:      req.EndMinute,
		CommitmentType: types.CommitmentType(req.CommitmentType),
		Date:           req.Date,
	}
	sess, err := h.svc.Schedule(c.Request.Context(), sessionID, slot, services.ScheduleOptions{
		StrictCapacity: req.StrictCapacity,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/unschedule
func (h *SessionHandler) Unschedule(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sess, err := h.svc.Unschedule(c.Request.Context(), sessionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/skip
func (h *SessionHandler) Skip(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req skipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sess, err := h.svc.Skip(c.Request.Context(), sessionID, req.SkipDate, req.Reason)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}
	sess, err := h.svc.Complete(c.Request.Context(), sessionID, req.EvidenceNotes, completedAt)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": sess})
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), sessionID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": sessionID})
}
