package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"code_practice/internal/app/policy"
	"code_practice/internal/common"
	"code_practice/internal/domain/model"
	"code_practice/internal/domain/repository"
	"code_practice/internal/platform/storage"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo  repository.SubmissionRepository
	problemRepo     repository.ProblemRepository
	store           storage.BlobStore
	notifier        *NotificationService
	editPendingOnly bool
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	problemRepo repository.ProblemRepository,
	store storage.BlobStore,
	notifier *NotificationService,
	editPendingOnly bool,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo:  submissionRepo,
		problemRepo:     problemRepo,
		store:           store,
		notifier:        notifier,
		editPendingOnly: editPendingOnly,
	}
}

// Screenshot is an uploaded proof image.
type Screenshot struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func (s *Screenshot) validate() error {
	if s == nil || s.Body == nil {
		return fmt.Errorf("screenshot file is required: %w", common.ErrBadRequest)
	}
	if !strings.HasPrefix(s.ContentType, "image/") {
		return fmt.Errorf("screenshot must be an image, got %q: %w", s.ContentType, common.ErrBadRequest)
	}
	return nil
}

type CreateSubmissionRequest struct {
	ProblemID  string
	Notes      *string
	Screenshot *Screenshot
}

type UpdateSubmissionRequest struct {
	Notes      *string     // nil keeps the current notes
	Screenshot *Screenshot // nil keeps the current screenshot
}

type ReviewRequest struct {
	Status     model.SubmissionStatus `json:"status"`
	AdminNotes *string                `json:"admin_notes"`
}

func (s *SubmissionService) upload(ctx context.Context, userID string, shot *Screenshot) (string, error) {
	url, err := s.store.Upload(ctx, storage.ObjectKey(userID, shot.Filename), shot.Body, shot.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload screenshot: %w", err)
	}
	return url, nil
}

// discard removes a blob whose row write failed or was replaced. Failures only leave an orphan.
func (s *SubmissionService) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Remove(ctx, url); err != nil {
		slog.Warn("failed to remove screenshot blob", "url", url, "error", err)
	}
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, caller *policy.Caller, filter model.SubmissionFilter) ([]model.Submission, error) {
	if err := policy.Authorize(caller, policy.ActionList, policy.ResourceSubmission, ""); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", filter.Status, common.ErrBadRequest)
	}
	if !caller.IsAdmin() {
		filter.UserID = caller.ID
	}
	return s.submissionRepo.ListSubmissions(ctx, filter)
}

func (s *SubmissionService) GetSubmission(ctx context.Context, caller *policy.Caller, id string) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionRead, policy.ResourceSubmission, sub.UserID); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateSubmission uploads the screenshot, then inserts a pending row.
// The blob is removed again if the insert fails.
func (s *SubmissionService) CreateSubmission(ctx context.Context, caller *policy.Caller, req CreateSubmissionRequest) (*model.Submission, error) {
	if err := policy.Authorize(caller, policy.ActionCreate, policy.ResourceSubmission, ""); err != nil {
		return nil, err
	}
	if err := req.Screenshot.validate(); err != nil {
		return nil, err
	}
	req.ProblemID = strings.TrimSpace(req.ProblemID)
	if req.ProblemID == "" {
		return nil, fmt.Errorf("problem_id is required: %w", common.ErrBadRequest)
	}
	problem, err := s.problemRepo.FindProblemByID(ctx, req.ProblemID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("problem does not exist: %w", common.ErrBadRequest)
		}
		return nil, err
	}

	url, err := s.upload(ctx, caller.ID, req.Screenshot)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		ID:            uuid.NewString(),
		UserID:        caller.ID,
		ProblemID:     problem.ID,
		ScreenshotURL: url,
		Notes:         trimOptional(req.Notes),
		Status:        model.SubmissionPending,
	}
	if err := s.submissionRepo.CreateSubmission(ctx, sub); err != nil {
		s.discard(context.WithoutCancel(ctx), url)
		return nil, err
	}

	created, err := s.submissionRepo.GetSubmissionByID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload submission: %w", err)
	}

	if s.notifier != nil {
		who := caller.ID
		if created.User != nil {
			who = created.User.FullName
		}
		err := s.notifier.NotifyRole(ctx, model.RoleAdmin, model.NotificationNewSubmission,
			"New submission", fmt.Sprintf("%s submitted %s for review.", who, problem.Title), &created.ID)
		if err != nil {
			slog.Error("notify new submission", "submission_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// UpdateSubmission lets the owner replace notes and the screenshot. A new
// screenshot is stored before the row changes; the old one is removed after.
func (s *SubmissionService) UpdateSubmission(ctx context.Context, caller *policy.Caller, id string, req UpdateSubmissionRequest) (*model.Submission, error) {
	current, err := s.submissionRepo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.ResourceSubmission, current.UserID); err != nil {
		return nil, err
	}
	if s.editPendingOnly && current.Status != model.SubmissionPending {
		return nil, fmt.Errorf("only pending submissions can be edited: %w", common.ErrConflict)
	}

	notes := current.Notes
	if req.Notes != nil {
		notes = trimOptional(req.Notes)
	}

	url := current.ScreenshotURL
	if req.Screenshot != nil {
		if err := req.Screenshot.validate(); err != nil {
			return nil, err
		}
		if url, err = s.upload(ctx, caller.ID, req.Screenshot); err != nil {
			return nil, err
		}
	}

	updated, err := s.submissionRepo.UpdateSubmissionContent(ctx, id, notes, url)
	if err != nil {
		if url != current.ScreenshotURL {
			s.discard(context.WithoutCancel(ctx), url)
		}
		return nil, err
	}
	if url != current.ScreenshotURL {
		s.discard(ctx, current.ScreenshotURL)
	}
	return updated, nil
}

// DeleteSubmission removes the row, then the blob on a best-effort basis.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, caller *policy.Caller, id string) error {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(caller, policy.ActionDelete, policy.ResourceSubmission, sub.UserID); err != nil {
		return err
	}
	if err := s.submissionRepo.DeleteSubmission(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, sub.ScreenshotURL)
	return nil
}

// ReviewSubmission records an admin decision and tells the owner. A failed
// notification is logged; the status change stands.
func (s *SubmissionService) ReviewSubmission(ctx context.Context, caller *policy.Caller, id string, req ReviewRequest) (*model.Submission, error) {
	if err := policy.Authorize(caller, policy.ActionReview, policy.ResourceSubmission, ""); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("status must be one of pending, approved, rejected: %w", common.ErrBadRequest)
	}

	updated, err := s.submissionRepo.UpdateSubmissionStatus(ctx, id, req.Status, trimOptional(req.AdminNotes), caller.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		title := "problem"
		if updated.Problem != nil {
			title = updated.Problem.Title
		}
		msg := fmt.Sprintf("Your submission for %s is now %s.", title, updated.Status)
		if updated.AdminNotes != nil {
			msg += " Note: " + *updated.AdminNotes
		}
		err := s.notifier.Notify(ctx, model.Notification{
			UserID:              updated.UserID,
			Type:                model.NotificationSubmissionUpdate,
			Title:               "Submission reviewed",
			Message:             msg,
			RelatedSubmissionID: &updated.ID,
		})
		if err != nil {
			slog.Error("notify submission update", "submission_id", updated.ID, "error", err)
		}
	}
	return updated, nil
}
