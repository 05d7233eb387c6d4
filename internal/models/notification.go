// internal/models/notification.go
package models

// Assignment notification channels and outcomes.
const (
	NotificationJobAssigned = "job_assigned"

	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent     = "sent"
	NotificationPartial  = "partial"
	NotificationFailed   = "failed"
	NotificationSkipped  = "skipped"
	NotificationDisabled = "disabled"
)
