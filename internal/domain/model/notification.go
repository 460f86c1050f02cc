package model

import "time"

const (
	NotificationSubmissionUpdate = "submission_update"
	NotificationNewSubmission    = "new_submission"
	NotificationNewProblem       = "new_problem"
	NotificationNewPattern       = "new_pattern"
)

type Notification struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Type                string    `json:"type"`
	Title               string    `json:"title"`
	Message             string    `json:"message"`
	IsRead              bool      `json:"is_read"`
	RelatedSubmissionID *string   `json:"related_submission_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
