package service

import (
	"bytes"
	"context"
	"testing"

	"code_practice/internal/app/policy"
	"code_practice/internal/domain/model"
	"code_practice/internal/testutil"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store         *testutil.Store
	subs          *testutil.SubmissionRepo
	blobs         *testutil.BlobStore
	badges        *testutil.Badges
	auth          *AuthService
	notifications *NotificationService
	patterns      *PatternService
	problems      *ProblemService
	submissions   *SubmissionService
	stats         *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testutil.SetupConfig(t)

	store := testutil.NewStore()
	env := &testEnv{
		store:  store,
		subs:   store.Submissions(),
		blobs:  testutil.NewBlobStore(),
		badges: testutil.NewBadges(),
	}
	env.auth = NewAuthService(store.Users())
	env.notifications = NewNotificationService(store.Notifications(), store.Users(), nil, env.badges)
	env.patterns = NewPatternService(store.Patterns(), env.notifications)
	env.problems = NewProblemService(store.Problems(), env.notifications)
	env.submissions = NewSubmissionService(env.subs, store.Problems(), env.blobs, env.notifications, false)
	env.stats = NewStatsService(store.Problems(), env.subs, store.Users())
	return env
}

func (e *testEnv) register(t *testing.T, name, email string) *policy.Caller {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterRequest{FullName: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return &policy.Caller{ID: res.User.ID, Role: res.User.Role}
}

func (e *testEnv) admin(t *testing.T, name, email string) *policy.Caller {
	t.Helper()
	c := e.register(t, name, email)
	e.store.Users().SetRole(c.ID, model.RoleAdmin)
	c.Role = model.RoleAdmin
	return c
}

func (e *testEnv) pattern(t *testing.T, admin *policy.Caller, name string) *model.Pattern {
	t.Helper()
	p, err := e.patterns.CreatePattern(context.Background(), admin, PatternRequest{Name: name})
	require.NoError(t, err)
	return p
}

func (e *testEnv) problem(t *testing.T, admin *policy.Caller, patternID, title string, d model.ProblemDifficulty) *model.Problem {
	t.Helper()
	p, err := e.problems.CreateProblem(context.Background(), admin, ProblemRequest{
		Title: title, ProblemLink: "https://leetcode.com/problems/x", Difficulty: d, PatternID: patternID,
	})
	require.NoError(t, err)
	return p
}

func png(name string) *Screenshot {
	return &Screenshot{Filename: name, ContentType: "image/png", Body: bytes.NewReader([]byte("\x89PNG"))}
}

func (e *testEnv) submit(t *testing.T, caller *policy.Caller, problemID string) *model.Submission {
	t.Helper()
	sub, err := e.submissions.CreateSubmission(context.Background(), caller, CreateSubmissionRequest{
		ProblemID: problemID, Screenshot: png("proof.png"),
	})
	require.NoError(t, err)
	return sub
}

func (e *testEnv) review(t *testing.T, admin *policy.Caller, id string, status model.SubmissionStatus) {
	t.Helper()
	_, err := e.submissions.ReviewSubmission(context.Background(), admin, id, ReviewRequest{Status: status})
	require.NoError(t, err)
}
