package notification

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-workforce/internal/events"
)

var titleCaser = cases.Title(language.English)

// RenderEmail builds the plain-text subject and body for one
// notification event.
func RenderEmail(event events.TimeOffNotification) (subject, body string) {
	switch event.EventType {
	case events.EventTypeRequestSubmitted:
		return renderSubmitted(event)
	default:
		return renderOutcome(event)
	}
}

func renderSubmitted(event events.TimeOffNotification) (string, string) {
	subject := fmt.Sprintf("%s Time-Off Request", titleCaser.String(strings.ToLower(event.RequestType)))

	b := strings.Builder{}
	b.WriteString("Dear Team Leader,\n")
	fmt.Fprintf(&b, "Employee %s applies for %s time off.\n", event.CreatorName, strings.ToLower(event.RequestType))
	fmt.Fprintf(&b, "The period is from %s to %s (%d days).\n", event.StartDate, event.EndDate, event.Duration)
	if event.Description != "" {
		b.WriteString(event.Description + "\n")
	}
	b.WriteString("Best regards!")

	return subject, b.String()
}

func renderOutcome(event events.TimeOffNotification) (string, string) {
	subject := fmt.Sprintf("%s's %s Time-Off Request",
		event.CreatorName, titleCaser.String(strings.ToLower(event.RequestType)))

	b := strings.Builder{}
	b.WriteString("Hello,\n")
	if event.Approved {
		fmt.Fprintf(&b, "%s's %s time-off request has been approved.\n", event.CreatorName, strings.ToLower(event.RequestType))
		fmt.Fprintf(&b, "The period is from %s to %s.\n", event.StartDate, event.EndDate)
	} else {
		fmt.Fprintf(&b, "%s's %s time-off request (from %s to %s) has been rejected.\n",
			event.CreatorName, strings.ToLower(event.RequestType), event.StartDate, event.EndDate)
	}
	b.WriteString("Best regards!")

	return subject, b.String()
}
