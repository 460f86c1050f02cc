package model

import "time"

// Pattern is a named algorithmic technique that groups problems.
type Pattern struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	CreatedByID  *string   `json:"created_by,omitempty"`
	ProblemCount int       `json:"problem_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PatternRef is the pattern as embedded in joined problem rows.
type PatternRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
