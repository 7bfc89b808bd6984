package events

import "time"

const TimeOffNotificationTopic = "workforce.timeoff.notification.v1"

const (
	EventTypeRequestSubmitted = "timeoff.request_submitted"
	EventTypeRequestOutcome   = "timeoff.request_outcome"
)

// TimeOffNotification is the payload the notification consumer turns
// into email. Recipients is the resolved address list; the workflow
// engine never talks to the mailer directly.
type TimeOffNotification struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	RequestType string    `json:"request_type"`
	CreatorName string    `json:"creator_name"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Duration    int       `json:"duration"`
	Description string    `json:"description,omitempty"`
	Approved    bool      `json:"approved"`
	Recipients  []string  `json:"recipients"`
	OccurredAt  time.Time `json:"occurred_at"`
}
