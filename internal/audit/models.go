package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"curaframe/pkg/requestcontext"
)

// EventCategory classifies audit events by retention needs.
type EventCategory string

const (
	// CategoryCompliance covers evaluation outcomes that must be retained
	// as the record of why a candidate was accepted or rejected.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers configuration changes and routine activity.
	CategoryOperations EventCategory = "operations"
)

type Action string

const (
	ActionEvaluationCompleted  Action = "evaluation_completed"
	ActionBatchCompleted       Action = "batch_evaluation_completed"
	ActionPopulationRegistered Action = "population_registered"
	ActionHistoryReset         Action = "history_reset"
)

var actionCategories = map[Action]EventCategory{
	ActionEvaluationCompleted:  CategoryCompliance,
	ActionBatchCompleted:       CategoryOperations,
	ActionPopulationRegistered: CategoryOperations,
	ActionHistoryReset:         CategoryCompliance,
}

// Category returns the category for an action. Unknown actions default to
// CategoryOperations.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted after evaluation and configuration actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is the candidate name, or the engine name for configuration
	// events.
	Subject    string    `json:"subject"`
	Action     Action    `json:"action"`
	ResultID   uuid.UUID `json:"result_id,omitempty"`
	Population string    `json:"population,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	// Violations lists the names of failed constraints.
	Violations []string `json:"violations,omitempty"`
	RequestID  string   `json:"request_id,omitempty"`
	ClientIP   string   `json:"client_ip,omitempty"`
	UserAgent  string   `json:"user_agent,omitempty"`
}

// normalize fills the fields every stored event must carry.
// withRequest fills request metadata the caller left empty from ctx.
func (e Event) withRequest(ctx context.Context) Event {
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = requestcontext.ClientIP(ctx)
	}
	if e.UserAgent == "" {
		e.UserAgent = requestcontext.UserAgent(ctx)
	}
	if t, ok := requestcontext.RequestTime(ctx); ok && e.Timestamp.IsZero() {
		e.Timestamp = t.UTC()
	}
	return e
}

func (e Event) normalize(now time.Time) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Category == "" {
		e.Category = e.Action.Category()
	}
	return e
}
