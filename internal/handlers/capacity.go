package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/services"
)

type CapacityHandler struct {
	svc       services.CapacityService
	advisor   services.AdvisorService
	childRepo repos.ChildRepo
}

func NewCapacityHandler(svc services.CapacityService, advisor services.AdvisorService, childRepo repos.ChildRepo) *CapacityHandler {
	return &CapacityHandler{svc: svc, advisor: advisor, childRepo: childRepo}
}

// GET /api/children/:id/capacity?week_start=2026-03-02
func (h *CapacityHandler) Week(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	child, err := h.childRepo.GetByID(c.Request.Context(), nil, childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	weekStart, err := parseDateParam(c.Query("week_start"), child.Location())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	week, err := h.svc.Week(c.Request.Context(), nil, child, weekStart)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"week": week})
}

// GET /api/children/:id/advisories?week_start=2026-03-02
func (h *CapacityHandler) Advisories(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	child, err := h.childRepo.GetByID(c.Request.Context(), nil, childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	weekStart, err := parseDateParam(c.Query("week_start"), child.Location())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	advisories, err := h.advisor.WeekAdvisories(c.Request.Context(), childID, weekStart)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"advisories": advisories})
}

// parseDateParam accepts YYYY-MM-DD, defaulting to today in the child's zone.
func parseDateParam(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation("2006-01-02", v, loc)
}
