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
	"github.com/gosimple/slug"
)

type PatternService struct {
	patternRepo repository.PatternRepository
	notifier    *NotificationService
}

func NewPatternService(patternRepo repository.PatternRepository, notifier *NotificationService) *PatternService {
	return &PatternService{patternRepo: patternRepo, notifier: notifier}
}

type PatternRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *PatternRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", common.ErrBadRequest)
	}
	return nil
}

func (s *PatternService) ListPatterns(ctx context.Context) ([]model.Pattern, error) {
	return s.patternRepo.List(ctx)
}

func (s *PatternService) GetPattern(ctx context.Context, id string) (*model.Pattern, error) {
	return s.patternRepo.FindByID(ctx, id)
}

func (s *PatternService) CreatePattern(ctx context.Context, caller *policy.Caller, req PatternRequest) (*model.Pattern, error) {
	if err := policy.Authorize(caller, policy.ActionCreate, policy.ResourcePattern, ""); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	creator := caller.ID
	pattern := &model.Pattern{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		CreatedByID: &creator,
	}
	if err := s.patternRepo.Create(ctx, pattern); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		err := s.notifier.NotifyRole(ctx, model.RoleStudent, model.NotificationNewPattern,
			"New pattern added", fmt.Sprintf("A new pattern %q is available.", pattern.Name), nil)
		if err != nil {
			slog.Error("notify new pattern", "pattern_id", pattern.ID, "error", err)
		}
	}
	return pattern, nil
}

func (s *PatternService) UpdatePattern(ctx context.Context, caller *policy.Caller, id string, req PatternRequest) (*model.Pattern, error) {
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.ResourcePattern, ""); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	pattern := &model.Pattern{
		ID:          id,
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
	}
	if err := s.patternRepo.Update(ctx, pattern); err != nil {
		return nil, err
	}
	return pattern, nil
}

// DeletePattern fails with ErrConflict while problems still reference the pattern.
func (s *PatternService) DeletePattern(ctx context.Context, caller *policy.Caller, id string) error {
	if err := policy.Authorize(caller, policy.ActionDelete, policy.ResourcePattern, ""); err != nil {
		return err
	}
	return s.patternRepo.Delete(ctx, id)
}
