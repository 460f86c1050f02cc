package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

type Submission struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	ProblemID     string           `json:"problem_id"`
	ScreenshotURL string           `json:"screenshot_url"`
	Notes         *string          `json:"notes"`
	Status        SubmissionStatus `json:"status"`
	AdminNotes    *string          `json:"admin_notes"`
	ReviewedByID  *string          `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	User    *SubmissionUser    `json:"users,omitempty"`    // joined
	Problem *SubmissionProblem `json:"problems,omitempty"` // joined
}

type SubmissionUser struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type SubmissionProblem struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Platform   string            `json:"platform"`
	Difficulty ProblemDifficulty `json:"difficulty"`
	PatternID  string            `json:"pattern_id"`
	Pattern    *PatternRef       `json:"patterns,omitempty"`
}

// SubmissionFilter narrows submission listings. Empty fields match everything.
type SubmissionFilter struct {
	UserID    string
	ProblemID string
	PatternID string
	Status    SubmissionStatus
}
