package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"code_practice/internal/app/policy"
	"code_practice/internal/common"
	"code_practice/internal/domain/model"
	"code_practice/internal/domain/repository"

	"github.com/google/uuid"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
	notifier    *NotificationService
}

func NewProblemService(problemRepo repository.ProblemRepository, notifier *NotificationService) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, notifier: notifier}
}

type ProblemRequest struct {
	Title       string                  `json:"title"`
	ProblemLink string                  `json:"problem_link"`
	YoutubeURL  *string                 `json:"youtube_url"`
	OurVideoURL *string                 `json:"our_video_url"`
	Difficulty  model.ProblemDifficulty `json:"difficulty"`
	Platform    string                  `json:"platform"`
	PatternID   string                  `json:"pattern_id"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (r *ProblemRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.ProblemLink = strings.TrimSpace(r.ProblemLink)
	r.PatternID = strings.TrimSpace(r.PatternID)
	r.Platform = strings.TrimSpace(r.Platform)
	r.YoutubeURL = trimOptional(r.YoutubeURL)
	r.OurVideoURL = trimOptional(r.OurVideoURL)

	if r.Title == "" || r.ProblemLink == "" || r.PatternID == "" {
		return fmt.Errorf("title, problem_link and pattern_id are required: %w", common.ErrBadRequest)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("difficulty must be one of Easy, Medium, Hard: %w", common.ErrBadRequest)
	}
	if r.Platform == "" {
		r.Platform = model.DefaultPlatform
	}
	return nil
}

func (r *ProblemRequest) apply(p *model.Problem) {
	p.Title = r.Title
	p.ProblemLink = r.ProblemLink
	p.YoutubeURL = r.YoutubeURL
	p.OurVideoURL = r.OurVideoURL
	p.Difficulty = r.Difficulty
	p.Platform = r.Platform
	p.PatternID = r.PatternID
}

func (s *ProblemService) ListProblems(ctx context.Context, filter model.ProblemFilter) ([]model.Problem, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q: %w", filter.Difficulty, common.ErrBadRequest)
	}
	return s.problemRepo.ListProblems(ctx, filter)
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	return s.problemRepo.FindProblemByID(ctx, id)
}

func (s *ProblemService) CreateProblem(ctx context.Context, caller *policy.Caller, req ProblemRequest) (*model.Problem, error) {
	if err := policy.Authorize(caller, policy.ActionCreate, policy.ResourceProblem, ""); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	creator := caller.ID
	problem := &model.Problem{ID: uuid.NewString(), CreatedByID: &creator}
	req.apply(problem)
	if err := s.problemRepo.CreateProblem(ctx, problem); err != nil {
		return nil, err
	}

	// Re-read for the joined pattern name.
	created, err := s.problemRepo.FindProblemByID(ctx, problem.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload problem: %w", err)
	}

	if s.notifier != nil {
		err := s.notifier.NotifyRole(ctx, model.RoleStudent, model.NotificationNewProblem,
			"New problem added", fmt.Sprintf("%s (%s) was added.", created.Title, created.Difficulty), nil)
		if err != nil {
			slog.Error("notify new problem", "problem_id", created.ID, "error", err)
		}
	}
	return created, nil
}

func (s *ProblemService) UpdateProblem(ctx context.Context, caller *policy.Caller, id string, req ProblemRequest) (*model.Problem, error) {
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.ResourceProblem, ""); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	problem := &model.Problem{ID: id}
	req.apply(problem)
	if err := s.problemRepo.UpdateProblem(ctx, problem); err != nil {
		return nil, err
	}
	return s.problemRepo.FindProblemByID(ctx, id)
}

// DeleteProblem removes the problem together with its submissions.
func (s *ProblemService) DeleteProblem(ctx context.Context, caller *policy.Caller, id string) error {
	if err := policy.Authorize(caller, policy.ActionDelete, policy.ResourceProblem, ""); err != nil {
		return err
	}
	return s.problemRepo.DeleteProblem(ctx, id)
}
