package service

import (
	"context"
	"testing"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogProblem(id, patternID, patternName string, d model.ProblemDifficulty) model.Problem {
	return model.Problem{ID: id, PatternID: patternID, Difficulty: d, Pattern: &model.PatternRef{ID: patternID, Name: patternName}}
}

func TestAggregateProgress(t *testing.T) {
	problems := []model.Problem{
		catalogProblem("p1", "tp", "Two Pointers", model.DifficultyEasy),
		catalogProblem("p2", "tp", "Two Pointers", model.DifficultyMedium),
		catalogProblem("p3", "bs", "Binary Search", model.DifficultyEasy),
	}
	solved := []model.SolvedProblem{
		{ProblemID: "p1", Difficulty: model.DifficultyEasy, PatternID: "tp"},
		{ProblemID: "p1", Difficulty: model.DifficultyEasy, PatternID: "tp"},
		{ProblemID: "p1", Difficulty: model.DifficultyEasy, PatternID: "tp"},
		{ProblemID: "gone", Difficulty: model.DifficultyHard, PatternID: "x"},
	}

	stats := AggregateProgress(problems, solved)

	assert.Equal(t, model.ProgressCount{Solved: 1, Total: 3, Percentage: 33}, stats.Overview)
	assert.Equal(t, []model.DifficultyProgress{
		{Label: model.DifficultyEasy, ProgressCount: model.ProgressCount{Solved: 1, Total: 2, Percentage: 50}},
		{Label: model.DifficultyMedium, ProgressCount: model.ProgressCount{Solved: 0, Total: 1, Percentage: 0}},
	}, stats.DifficultyBreakdown)
	assert.Equal(t, []model.PatternProgress{
		{ID: "bs", Name: "Binary Search", ProgressCount: model.ProgressCount{Solved: 0, Total: 1, Percentage: 0}},
		{ID: "tp", Name: "Two Pointers", ProgressCount: model.ProgressCount{Solved: 1, Total: 2, Percentage: 50}},
	}, stats.PatternBreakdown)
}

func TestAggregateProgress_EmptyCatalog(t *testing.T) {
	stats := AggregateProgress(nil, nil)

	assert.Equal(t, model.ProgressCount{}, stats.Overview)
	assert.NotNil(t, stats.DifficultyBreakdown)
	assert.Empty(t, stats.DifficultyBreakdown)
	assert.NotNil(t, stats.PatternBreakdown)
}

func TestAggregateProgress_SolvedNeverExceedsTotal(t *testing.T) {
	problems := []model.Problem{
		catalogProblem("a", "x", "X", model.DifficultyHard),
		catalogProblem("b", "x", "X", model.DifficultyHard),
	}
	var solved []model.SolvedProblem
	for i := 0; i < 10; i++ {
		solved = append(solved, model.SolvedProblem{ProblemID: "a"}, model.SolvedProblem{ProblemID: "b"})
	}

	stats := AggregateProgress(problems, solved)
	assert.Equal(t, model.ProgressCount{Solved: 2, Total: 2, Percentage: 100}, stats.Overview)
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 0, percentage(0, 0))
	assert.Equal(t, 67, percentage(2, 3))
	assert.Equal(t, 50, percentage(1, 2))
	assert.Equal(t, 17, percentage(1, 6))
}

func TestStatsService_GetUserStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	tp := env.pattern(t, admin, "Two Pointers")
	p1 := env.problem(t, admin, tp.ID, "Two Sum", model.DifficultyEasy)
	env.problem(t, admin, tp.ID, "3Sum", model.DifficultyMedium)

	for i := 0; i < 3; i++ {
		sub := env.submit(t, alice, p1.ID)
		env.review(t, admin, sub.ID, model.SubmissionApproved)
	}
	rejected := env.submit(t, bob, p1.ID)
	env.review(t, admin, rejected.ID, model.SubmissionRejected)

	stats, err := env.stats.GetUserStats(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressCount{Solved: 1, Total: 2, Percentage: 50}, stats.Overview)

	stats, err = env.stats.GetUserStats(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Overview.Solved)

	_, err = env.stats.GetUserStats(ctx, bob, alice.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.stats.GetUserStats(ctx, admin, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRankLeaderboard(t *testing.T) {
	entries := []model.LeaderboardEntry{
		{UserID: "u3", FullName: "Cara", SolvedCount: 1},
		{UserID: "u1", FullName: "Bob", SolvedCount: 3},
		{UserID: "u2", FullName: "Ann", SolvedCount: 3},
		{UserID: "u4", FullName: "Dan", SolvedCount: 0},
	}

	ranked := RankLeaderboard(entries)

	var order []string
	var ranks []int
	for _, e := range ranked {
		order = append(order, e.FullName)
		ranks = append(ranks, e.Rank)
	}
	assert.Equal(t, []string{"Ann", "Bob", "Cara", "Dan"}, order)
	assert.Equal(t, []int{1, 1, 3, 4}, ranks)
}

func TestStatsService_Leaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)
	sub := env.submit(t, alice, prob.ID)
	env.review(t, admin, sub.ID, model.SubmissionApproved)

	board, err := env.stats.GetLeaderboard(ctx, alice)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, alice.ID, board[0].UserID)
	assert.Equal(t, 1, board[0].SolvedCount)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 0, board[1].SolvedCount)
}
