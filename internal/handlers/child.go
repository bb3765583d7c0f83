package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/services"
)

type ChildHandler struct {
	svc services.ChildService
}

func NewChildHandler(svc services.ChildService) *ChildHandler {
	return &ChildHandler{svc: svc}
}

// POST /api/children
func (h *ChildHandler) Create(c *gin.Context) {
	var in services.ChildInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	child, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"child": child})
}

// GET /api/children/:id
func (h *ChildHandler) Get(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	child, err := h.svc.Get(c.Request.Context(), childID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"child": child})
}

// PUT /api/children/:id
func (h *ChildHandler) Update(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var in services.ChildInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	child, err := h.svc.Update(c.Request.Context(), childID, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"child": child})
}

// GET /api/children
func (h *ChildHandler) List(c *gin.Context) {
	children, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"children": children})
}
