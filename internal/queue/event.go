// Package queue defines message payloads exchanged over the message broker
// and the consumer that delivers them.
package queue

// EmailEvent is published for every client notification.  It carries
// everything needed to send the email without querying the primary database.
type EmailEvent struct {
    To       string `json:"to"`
    Subject  string `json:"subject"`
    Body     string `json:"body"`
    QueuedAt string `json:"queued_at"`
}
