package service

import (
	"context"
	"math"
	"sort"

	"code_practice/internal/app/policy"
	"code_practice/internal/domain/model"
	"code_practice/internal/domain/repository"
)

type StatsService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
}

func NewStatsService(problemRepo repository.ProblemRepository, submissionRepo repository.SubmissionRepository, userRepo repository.UserRepository) *StatsService {
	return &StatsService{problemRepo: problemRepo, submissionRepo: submissionRepo, userRepo: userRepo}
}

func percentage(solved, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(solved) / float64(total)))
}

func progress(solved, total int) model.ProgressCount {
	return model.ProgressCount{Solved: solved, Total: total, Percentage: percentage(solved, total)}
}

// AggregateProgress counts totals over the catalog and solved problems over
// solved, counting each problem id at most once. Solved entries for problems
// missing from the catalog are ignored.
func AggregateProgress(problems []model.Problem, solved []model.SolvedProblem) model.UserStats {
	type bucket struct{ solved, total int }

	catalog := make(map[string]model.Problem, len(problems))
	byDifficulty := make(map[model.ProblemDifficulty]*bucket)
	byPattern := make(map[string]*bucket)
	patternNames := make(map[string]string)

	for _, p := range problems {
		if _, dup := catalog[p.ID]; dup {
			continue
		}
		catalog[p.ID] = p
		if byDifficulty[p.Difficulty] == nil {
			byDifficulty[p.Difficulty] = &bucket{}
		}
		byDifficulty[p.Difficulty].total++
		if byPattern[p.PatternID] == nil {
			byPattern[p.PatternID] = &bucket{}
			if p.Pattern != nil {
				patternNames[p.PatternID] = p.Pattern.Name
			}
		}
		byPattern[p.PatternID].total++
	}

	seen := make(map[string]struct{}, len(solved))
	for _, sp := range solved {
		if _, ok := seen[sp.ProblemID]; ok {
			continue
		}
		p, ok := catalog[sp.ProblemID]
		if !ok {
			continue
		}
		seen[sp.ProblemID] = struct{}{}
		byDifficulty[p.Difficulty].solved++
		byPattern[p.PatternID].solved++
	}

	stats := model.UserStats{
		Overview:            progress(len(seen), len(catalog)),
		DifficultyBreakdown: []model.DifficultyProgress{},
		PatternBreakdown:    []model.PatternProgress{},
	}
	for _, d := range model.Difficulties {
		if b, ok := byDifficulty[d]; ok {
			stats.DifficultyBreakdown = append(stats.DifficultyBreakdown, model.DifficultyProgress{
				Label: d, ProgressCount: progress(b.solved, b.total),
			})
		}
	}
	for id, b := range byPattern {
		stats.PatternBreakdown = append(stats.PatternBreakdown, model.PatternProgress{
			ID: id, Name: patternNames[id], ProgressCount: progress(b.solved, b.total),
		})
	}
	sort.Slice(stats.PatternBreakdown, func(i, j int) bool {
		a, b := stats.PatternBreakdown[i], stats.PatternBreakdown[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return stats
}

// GetUserStats is limited to the caller's own id unless the caller is an admin.
func (s *StatsService) GetUserStats(ctx context.Context, caller *policy.Caller, userID string) (*model.UserStats, error) {
	if err := policy.Authorize(caller, policy.ActionRead, policy.ResourceStats, userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	problems, err := s.problemRepo.ListProblems(ctx, model.ProblemFilter{})
	if err != nil {
		return nil, err
	}
	solved, err := s.submissionRepo.ListSolvedProblems(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := AggregateProgress(problems, solved)
	return &stats, nil
}

// RankLeaderboard orders by solved count desc, then full name and id, and
// assigns competition ranks (1, 1, 3).
func RankLeaderboard(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.SolvedCount != b.SolvedCount {
			return a.SolvedCount > b.SolvedCount
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.UserID < b.UserID
	})
	for i := range entries {
		if i > 0 && entries[i].SolvedCount == entries[i-1].SolvedCount {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

func (s *StatsService) GetLeaderboard(ctx context.Context, caller *policy.Caller) ([]model.LeaderboardEntry, error) {
	if err := policy.Authorize(caller, policy.ActionRead, policy.ResourceLeaderboard, ""); err != nil {
		return nil, err
	}
	entries, err := s.submissionRepo.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return RankLeaderboard(entries), nil
}
