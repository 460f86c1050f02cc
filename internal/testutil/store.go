// Package testutil provides in-memory stand-ins for the Postgres repositories
// and the blob store. They enforce the same constraints the schema does.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"
)

// Store backs every fake repository so cross-table rules (foreign keys,
// cascades, joins) behave as in the database.
type Store struct {
	mu            sync.Mutex
	tick          time.Time
	users         map[string]model.User
	patterns      map[string]model.Pattern
	problems      map[string]model.Problem
	submissions   map[string]model.Submission
	notifications map[string]model.Notification
}

func NewStore() *Store {
	return &Store{
		tick:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         map[string]model.User{},
		patterns:      map[string]model.Pattern{},
		problems:      map[string]model.Problem{},
		submissions:   map[string]model.Submission{},
		notifications: map[string]model.Notification{},
	}
}

// now returns strictly increasing timestamps so newest-first ordering is stable.
func (s *Store) now() time.Time {
	s.tick = s.tick.Add(time.Millisecond)
	return s.tick
}

func (s *Store) Users() *UserRepo                 { return &UserRepo{s} }
func (s *Store) Patterns() *PatternRepo           { return &PatternRepo{s} }
func (s *Store) Problems() *ProblemRepo           { return &ProblemRepo{s} }
func (s *Store) Submissions() *SubmissionRepo     { return &SubmissionRepo{s: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s} }

// SubmissionCount is the number of stored submission rows.
func (s *Store) SubmissionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions)
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return common.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.User{}
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SetRole changes a role out-of-band, the way an operator would in the database.
func (r *UserRepo) SetRole(id, role string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.Role = role
		r.s.users[id] = u
	}
}

// Remove deletes a user and cascades to their submissions and notifications.
func (r *UserRepo) Remove(id string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	for sid, sub := range r.s.submissions {
		if sub.UserID == id {
			delete(r.s.submissions, sid)
		}
	}
	for nid, n := range r.s.notifications {
		if n.UserID == id {
			delete(r.s.notifications, nid)
		}
	}
}

type PatternRepo struct{ s *Store }

func (r *PatternRepo) nameTaken(name, exceptID string) bool {
	for _, p := range r.s.patterns {
		if p.Name == name && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *PatternRepo) problemCount(id string) int {
	n := 0
	for _, p := range r.s.problems {
		if p.PatternID == id {
			n++
		}
	}
	return n
}

func (r *PatternRepo) Create(_ context.Context, p *model.Pattern) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(p.Name, "") {
		return common.Errorf("pattern with this name already exists: %w", common.ErrConflict)
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.patterns[p.ID] = *p
	return nil
}

func (r *PatternRepo) Update(_ context.Context, p *model.Pattern) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.patterns[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	if r.nameTaken(p.Name, p.ID) {
		return common.Errorf("pattern with this name already exists: %w", common.ErrConflict)
	}
	p.CreatedByID = existing.CreatedByID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.patterns[p.ID] = *p
	return nil
}

func (r *PatternRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patterns[id]; !ok {
		return common.ErrNotFound
	}
	if r.problemCount(id) > 0 {
		return common.Errorf("pattern is still used by problems: %w", common.ErrConflict)
	}
	delete(r.s.patterns, id)
	return nil
}

func (r *PatternRepo) FindByID(_ context.Context, id string) (*model.Pattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patterns[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	p.ProblemCount = r.problemCount(id)
	return &p, nil
}

func (r *PatternRepo) List(_ context.Context) ([]model.Pattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Pattern{}
	for _, p := range r.s.patterns {
		p.ProblemCount = r.problemCount(p.ID)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type ProblemRepo struct{ s *Store }

func (r *ProblemRepo) joined(p model.Problem) model.Problem {
	if pt, ok := r.s.patterns[p.PatternID]; ok {
		p.Pattern = &model.PatternRef{ID: pt.ID, Name: pt.Name}
	}
	return p
}

func (r *ProblemRepo) CreateProblem(_ context.Context, p *model.Problem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patterns[p.PatternID]; !ok {
		return common.Errorf("pattern does not exist: %w", common.ErrBadRequest)
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Pattern = nil
	r.s.problems[p.ID] = stored
	return nil
}

func (r *ProblemRepo) UpdateProblem(_ context.Context, p *model.Problem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.problems[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	if _, ok := r.s.patterns[p.PatternID]; !ok {
		return common.Errorf("pattern does not exist: %w", common.ErrBadRequest)
	}
	p.CreatedByID = existing.CreatedByID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	stored := *p
	stored.Pattern = nil
	r.s.problems[p.ID] = stored
	return nil
}

func (r *ProblemRepo) DeleteProblem(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.problems[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.problems, id)
	for sid, sub := range r.s.submissions {
		if sub.ProblemID == id {
			delete(r.s.submissions, sid)
		}
	}
	return nil
}

func (r *ProblemRepo) FindProblemByID(_ context.Context, id string) (*model.Problem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	p = r.joined(p)
	return &p, nil
}

func (r *ProblemRepo) ListProblems(_ context.Context, filter model.ProblemFilter) ([]model.Problem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Problem{}
	for _, p := range r.s.problems {
		if filter.PatternID != "" && p.PatternID != filter.PatternID {
			continue
		}
		if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, r.joined(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type SubmissionRepo struct {
	s *Store

	// CreateErr, when set, fails CreateSubmission after validation.
	CreateErr error
	// UpdateErr, when set, fails UpdateSubmissionContent.
	UpdateErr error
}

func (r *SubmissionRepo) joined(sub model.Submission) model.Submission {
	if u, ok := r.s.users[sub.UserID]; ok {
		sub.User = &model.SubmissionUser{FullName: u.FullName, Email: u.Email}
	}
	if p, ok := r.s.problems[sub.ProblemID]; ok {
		sp := &model.SubmissionProblem{
			ID: p.ID, Title: p.Title, Platform: p.Platform, Difficulty: p.Difficulty, PatternID: p.PatternID,
		}
		if pt, ok := r.s.patterns[p.PatternID]; ok {
			sp.Pattern = &model.PatternRef{ID: pt.ID, Name: pt.Name}
		}
		sub.Problem = sp
	}
	return sub
}

func (r *SubmissionRepo) CreateSubmission(_ context.Context, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.problems[sub.ProblemID]; !ok {
		return common.Errorf("problem does not exist: %w", common.ErrBadRequest)
	}
	if r.CreateErr != nil {
		return r.CreateErr
	}
	sub.CreatedAt = r.s.now()
	sub.UpdatedAt = sub.CreatedAt
	stored := *sub
	stored.User, stored.Problem = nil, nil
	r.s.submissions[sub.ID] = stored
	return nil
}

func (r *SubmissionRepo) GetSubmissionByID(_ context.Context, id string) (*model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	sub = r.joined(sub)
	return &sub, nil
}

func (r *SubmissionRepo) ListSubmissions(_ context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Submission{}
	for _, sub := range r.s.submissions {
		if filter.UserID != "" && sub.UserID != filter.UserID {
			continue
		}
		if filter.ProblemID != "" && sub.ProblemID != filter.ProblemID {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		if filter.PatternID != "" && r.s.problems[sub.ProblemID].PatternID != filter.PatternID {
			continue
		}
		out = append(out, r.joined(sub))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SubmissionRepo) UpdateSubmissionContent(ctx context.Context, id string, notes *string, screenshotURL string) (*model.Submission, error) {
	r.s.mu.Lock()
	sub, ok := r.s.submissions[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, common.ErrNotFound
	}
	if r.UpdateErr != nil {
		r.s.mu.Unlock()
		return nil, r.UpdateErr
	}
	sub.Notes = notes
	sub.ScreenshotURL = screenshotURL
	sub.UpdatedAt = r.s.now()
	r.s.submissions[id] = sub
	r.s.mu.Unlock()
	return r.GetSubmissionByID(ctx, id)
}

func (r *SubmissionRepo) UpdateSubmissionStatus(ctx context.Context, id string, status model.SubmissionStatus, adminNotes *string, reviewerID string) (*model.Submission, error) {
	r.s.mu.Lock()
	sub, ok := r.s.submissions[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, common.ErrNotFound
	}
	now := r.s.now()
	sub.Status = status
	sub.AdminNotes = adminNotes
	sub.ReviewedByID = &reviewerID
	sub.ReviewedAt = &now
	sub.UpdatedAt = now
	r.s.submissions[id] = sub
	r.s.mu.Unlock()
	return r.GetSubmissionByID(ctx, id)
}

func (r *SubmissionRepo) DeleteSubmission(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.submissions, id)
	return nil
}

func (r *SubmissionRepo) ListSolvedProblems(_ context.Context, userID string) ([]model.SolvedProblem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	out := []model.SolvedProblem{}
	for _, sub := range r.s.submissions {
		if sub.UserID != userID || sub.Status != model.SubmissionApproved || seen[sub.ProblemID] {
			continue
		}
		p, ok := r.s.problems[sub.ProblemID]
		if !ok {
			continue
		}
		seen[sub.ProblemID] = true
		out = append(out, model.SolvedProblem{ProblemID: p.ID, Difficulty: p.Difficulty, PatternID: p.PatternID})
	}
	return out, nil
}

func (r *SubmissionRepo) GetLeaderboard(_ context.Context) ([]model.LeaderboardEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, sub := range r.s.submissions {
		if sub.Status == model.SubmissionApproved {
			counts[sub.UserID]++
		}
	}
	out := []model.LeaderboardEntry{}
	for _, u := range r.s.users {
		out = append(out, model.LeaderboardEntry{UserID: u.ID, FullName: u.FullName, SolvedCount: counts[u.ID]})
	}
	return out, nil
}

type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.CreatedAt = r.s.now()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string) ([]model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return common.ErrNotFound
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, n := range r.s.notifications {
		if n.UserID == userID {
			n.IsRead = true
			r.s.notifications[id] = n
		}
	}
	return nil
}

func (r *NotificationRepo) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}
