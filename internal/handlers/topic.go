package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/services"
)

type TopicHandler struct {
	svc services.TopicService
}

func NewTopicHandler(svc services.TopicService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	var in services.TopicInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	topic, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"topic": topic})
}

// GET /api/topics/:id
func (h *TopicHandler) Get(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	topic, err := h.svc.Get(c.Request.Context(), topicID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"topic": topic})
}

// GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"topics": topics})
}
