package service

import (
	"bytes"
	"context"
	"testing"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"
	"code_practice/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionService_CreateRequiresScreenshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	student := env.register(t, "Stu", "stu@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)

	_, err := env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{ProblemID: prob.ID})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{
		ProblemID:  prob.ID,
		Screenshot: &Screenshot{Filename: "a.txt", ContentType: "text/plain", Body: bytes.NewReader(nil)},
	})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{Screenshot: png("a.png")})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{ProblemID: "missing", Screenshot: png("a.png")})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	assert.Zero(t, env.store.SubmissionCount())
	assert.Zero(t, env.blobs.Len())
}

func TestSubmissionService_CreateStoresPendingAndNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	student := env.register(t, "Stu", "stu@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)

	notes := "  used a hash map "
	sub, err := env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{
		ProblemID: prob.ID, Notes: &notes, Screenshot: png("My Proof.PNG"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionPending, sub.Status)
	assert.Equal(t, student.ID, sub.UserID)
	require.NotNil(t, sub.Notes)
	assert.Equal(t, "used a hash map", *sub.Notes)
	assert.True(t, env.blobs.Has(sub.ScreenshotURL))
	assert.Contains(t, sub.ScreenshotURL, "/"+student.ID+"/")
	require.NotNil(t, sub.User)
	assert.Equal(t, "Stu", sub.User.FullName)
	require.NotNil(t, sub.Problem)
	assert.Equal(t, "Arrays", sub.Problem.Pattern.Name)

	list, err := env.notifications.List(ctx, admin)
	require.NoError(t, err)
	var found bool
	for _, n := range list {
		if n.Type == model.NotificationNewSubmission {
			found = true
			require.NotNil(t, n.RelatedSubmissionID)
			assert.Equal(t, sub.ID, *n.RelatedSubmissionID)
		}
	}
	assert.True(t, found)
}

func TestSubmissionService_CreateRemovesBlobWhenInsertFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	student := env.register(t, "Stu", "stu@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)

	env.subs.CreateErr = testutil.ErrInjected
	_, err := env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{ProblemID: prob.ID, Screenshot: png("a.png")})
	assert.ErrorIs(t, err, testutil.ErrInjected)

	assert.Zero(t, env.blobs.Len())
	assert.Len(t, env.blobs.Removed, 1)
	assert.Zero(t, env.store.SubmissionCount())
}

func TestSubmissionService_UploadFailureCreatesNoRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	student := env.register(t, "Stu", "stu@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)

	env.blobs.UploadErr = testutil.ErrInjected
	_, err := env.submissions.CreateSubmission(ctx, student, CreateSubmissionRequest{ProblemID: prob.ID, Screenshot: png("a.png")})
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Zero(t, env.store.SubmissionCount())
}

func TestSubmissionService_ListScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	arrays := env.pattern(t, admin, "Arrays")
	graphs := env.pattern(t, admin, "Graphs")
	p1 := env.problem(t, admin, arrays.ID, "Two Sum", model.DifficultyEasy)
	p2 := env.problem(t, admin, graphs.ID, "Islands", model.DifficultyMedium)

	a1 := env.submit(t, alice, p1.ID)
	env.submit(t, alice, p2.ID)
	env.submit(t, bob, p1.ID)
	env.review(t, admin, a1.ID, model.SubmissionApproved)

	own, err := env.submissions.ListSubmissions(ctx, alice, model.SubmissionFilter{UserID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, own, 2, "user_id filter is ignored for students")
	for _, s := range own {
		assert.Equal(t, alice.ID, s.UserID)
	}

	all, err := env.submissions.ListSubmissions(ctx, admin, model.SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bobs, err := env.submissions.ListSubmissions(ctx, admin, model.SubmissionFilter{UserID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	byPattern, err := env.submissions.ListSubmissions(ctx, admin, model.SubmissionFilter{PatternID: graphs.ID})
	require.NoError(t, err)
	require.Len(t, byPattern, 1)
	assert.Equal(t, p2.ID, byPattern[0].ProblemID)

	approved, err := env.submissions.ListSubmissions(ctx, alice, model.SubmissionFilter{Status: model.SubmissionApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a1.ID, approved[0].ID)

	_, err = env.submissions.ListSubmissions(ctx, alice, model.SubmissionFilter{Status: "done"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestSubmissionService_GetOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)
	sub := env.submit(t, alice, prob.ID)

	_, err := env.submissions.GetSubmission(ctx, alice, sub.ID)
	assert.NoError(t, err)
	_, err = env.submissions.GetSubmission(ctx, admin, sub.ID)
	assert.NoError(t, err)
	_, err = env.submissions.GetSubmission(ctx, bob, sub.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.submissions.GetSubmission(ctx, alice, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmissionService_UpdateReplacesScreenshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)
	sub := env.submit(t, alice, prob.ID)
	oldURL := sub.ScreenshotURL

	notes := "second try"
	updated, err := env.submissions.UpdateSubmission(ctx, alice, sub.ID, UpdateSubmissionRequest{Notes: &notes, Screenshot: png("new.png")})
	require.NoError(t, err)
	assert.NotEqual(t, oldURL, updated.ScreenshotURL)
	assert.True(t, env.blobs.Has(updated.ScreenshotURL))
	assert.False(t, env.blobs.Has(oldURL))
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "second try", *updated.Notes)

	_, err = env.submissions.UpdateSubmission(ctx, admin, sub.ID, UpdateSubmissionRequest{Notes: &notes})
	assert.ErrorIs(t, err, common.ErrForbidden, "only the owner edits")
}

func TestSubmissionService_UpdateKeepsOldBlobWhenRowWriteFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)
	sub := env.submit(t, alice, prob.ID)

	env.subs.UpdateErr = testutil.ErrInjected
	_, err := env.submissions.UpdateSubmission(ctx, alice, sub.ID, UpdateSubmissionRequest{Screenshot: png("new.png")})
	assert.ErrorIs(t, err, testutil.ErrInjected)

	assert.True(t, env.blobs.Has(sub.ScreenshotURL))
	assert.Equal(t, 1, env.blobs.Len(), "the new blob is removed again")

	got, err := env.submissions.GetSubmission(ctx, alice, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ScreenshotURL, got.ScreenshotURL)
}

func TestSubmissionService_UpdatePendingOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.submissions.editPendingOnly = true
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)
	sub := env.submit(t, alice, prob.ID)

	notes := "edit"
	_, err := env.submissions.UpdateSubmission(ctx, alice, sub.ID, UpdateSubmissionRequest{Notes: &notes})
	require.NoError(t, err)

	env.review(t, admin, sub.ID, model.SubmissionRejected)
	_, err = env.submissions.UpdateSubmission(ctx, alice, sub.ID, UpdateSubmissionRequest{Notes: &notes})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestSubmissionService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)

	own := env.submit(t, alice, prob.ID)
	approved := env.submit(t, alice, prob.ID)
	env.review(t, admin, approved.ID, model.SubmissionApproved)

	assert.ErrorIs(t, env.submissions.DeleteSubmission(ctx, bob, own.ID), common.ErrForbidden)

	require.NoError(t, env.submissions.DeleteSubmission(ctx, alice, own.ID))
	assert.False(t, env.blobs.Has(own.ScreenshotURL))

	env.blobs.RemoveErr = testutil.ErrInjected
	require.NoError(t, env.submissions.DeleteSubmission(ctx, admin, approved.ID), "blob removal is best effort")
	assert.Zero(t, env.store.SubmissionCount())
}

func TestSubmissionService_Review(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "Root", "root@example.com")
	alice := env.register(t, "Alice", "alice@example.com")
	prob := env.problem(t, admin, env.pattern(t, admin, "Arrays").ID, "Two Sum", model.DifficultyEasy)
	sub := env.submit(t, alice, prob.ID)

	_, err := env.submissions.ReviewSubmission(ctx, alice, sub.ID, ReviewRequest{Status: model.SubmissionApproved})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.submissions.ReviewSubmission(ctx, admin, sub.ID, ReviewRequest{Status: "accepted"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	unchanged, err := env.submissions.GetSubmission(ctx, admin, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPending, unchanged.Status)
	assert.Nil(t, unchanged.ReviewedAt)

	note := "nice"
	reviewed, err := env.submissions.ReviewSubmission(ctx, admin, sub.ID, ReviewRequest{Status: model.SubmissionApproved, AdminNotes: &note})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedByID)
	assert.Equal(t, admin.ID, *reviewed.ReviewedByID)
	assert.NotNil(t, reviewed.ReviewedAt)

	list, err := env.notifications.List(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, model.NotificationSubmissionUpdate, list[0].Type)
	assert.Contains(t, list[0].Message, "approved")

	_, err = env.submissions.ReviewSubmission(ctx, admin, "missing", ReviewRequest{Status: model.SubmissionRejected})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
