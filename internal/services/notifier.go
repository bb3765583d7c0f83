package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/logger"
)

// SessionCompletedEvent is handed to the external spaced-repetition review
// generator when a session reaches done. Review scheduling itself lives with
// that collaborator.
type SessionCompletedEvent struct {
	SessionID   uuid.UUID `json:"session_id"`
	TopicID     uuid.UUID `json:"topic_id"`
	ChildID     uuid.UUID `json:"child_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type CompletionNotifier interface {
	SessionCompleted(ctx context.Context, ev SessionCompletedEvent)
}

type logCompletionNotifier struct {
	log *logger.Logger
}

// NewLogCompletionNotifier is the default sink until a review collaborator is
// attached.
func NewLogCompletionNotifier(baseLog *logger.Logger) CompletionNotifier {
	return &logCompletionNotifier{log: baseLog.With("service", "CompletionNotifier")}
}

func (n *logCompletionNotifier) SessionCompleted(ctx context.Context, ev SessionCompletedEvent) {
	n.log.Info("session completed",
		"session_id", ev.SessionID,
		"topic_id", ev.TopicID,
		"child_id", ev.ChildID,
		"completed_at", ev.CompletedAt,
	)
}
