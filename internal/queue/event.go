// Package queue defines the report lifecycle events exchanged over the
// message broker and the background consumer that records them.
package queue

// Event kinds carried by ReportEvent.
const (
    KindReportCreated = "report.created"
    KindReportDeleted = "report.deleted"
)

// ReportEvent is published on the report.lifecycle queue whenever a
// report is created or deleted. It carries enough context for
// downstream consumers (notifications, analytics, municipal dashboards)
// to act without querying the primary database.
type ReportEvent struct {
    Kind         string  `json:"kind"`
    ReportID     string  `json:"report_id"`
    UserID       string  `json:"user_id"`
    Title        string  `json:"title"`
    Status       string  `json:"status"`
    Zipcode      string  `json:"zipcode"`
    Municipality string  `json:"municipality"`
    Latitude     float64 `json:"latitude"`
    Longitude    float64 `json:"longitude"`
    OccurredAt   string  `json:"occurred_at"`
}
