package model

// SolvedProblem is one distinct problem a user has at least one approved submission for.
type SolvedProblem struct {
	ProblemID  string
	Difficulty ProblemDifficulty
	PatternID  string
}

type ProgressCount struct {
	Solved     int `json:"solved"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type DifficultyProgress struct {
	Label ProblemDifficulty `json:"label"`
	ProgressCount
}

type PatternProgress struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	ProgressCount
}

type UserStats struct {
	Overview            ProgressCount        `json:"overview"`
	DifficultyBreakdown []DifficultyProgress `json:"difficulty_breakdown"`
	PatternBreakdown    []PatternProgress    `json:"pattern_breakdown"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"id"`
	FullName    string `json:"full_name"`
	SolvedCount int    `json:"solved_count"`
}
