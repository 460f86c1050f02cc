package model

import (
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

// Difficulties lists the valid difficulties in display order.
var Difficulties = []ProblemDifficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d ProblemDifficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

const DefaultPlatform = "LeetCode"

type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	ProblemLink string            `json:"problem_link"`
	YoutubeURL  *string           `json:"youtube_url,omitempty"`
	OurVideoURL *string           `json:"our_video_url,omitempty"`
	Difficulty  ProblemDifficulty `json:"difficulty"`
	Platform    string            `json:"platform"`
	PatternID   string            `json:"pattern_id"`
	CreatedByID *string           `json:"created_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Pattern     *PatternRef       `json:"patterns,omitempty"` // joined
}

// ProblemFilter narrows problem listings. Empty fields match everything.
type ProblemFilter struct {
	PatternID  string
	Difficulty ProblemDifficulty
}
