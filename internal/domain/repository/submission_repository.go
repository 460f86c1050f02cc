package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error)
	UpdateSubmissionContent(ctx context.Context, id string, notes *string, screenshotURL string) (*model.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status model.SubmissionStatus, adminNotes *string, reviewerID string) (*model.Submission, error)
	DeleteSubmission(ctx context.Context, id string) error

	// ListSolvedProblems returns each problem the user has an approved submission for, once.
	ListSolvedProblems(ctx context.Context, userID string) ([]model.SolvedProblem, error)
	// GetLeaderboard returns every user with their approved submission count, unranked.
	GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionSelect = `
        SELECT s.id, s.user_id, s.problem_id, s.screenshot_url, s.notes, s.status, s.admin_notes,
               s.reviewed_by, s.reviewed_at, s.created_at, s.updated_at,
               u.full_name, u.email,
               p.title, p.platform, p.difficulty, p.pattern_id, pt.name
        FROM submissions s
        JOIN users u ON u.id = s.user_id
        JOIN problems p ON p.id = s.problem_id
        JOIN patterns pt ON pt.id = p.pattern_id`

func scanSubmission(row interface{ Scan(...any) error }, s *model.Submission) error {
	var user model.SubmissionUser
	var problem model.SubmissionProblem
	var patternName string
	err := row.Scan(&s.ID, &s.UserID, &s.ProblemID, &s.ScreenshotURL, &s.Notes, &s.Status, &s.AdminNotes,
		&s.ReviewedByID, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt,
		&user.FullName, &user.Email,
		&problem.Title, &problem.Platform, &problem.Difficulty, &problem.PatternID, &patternName)
	if err != nil {
		return err
	}
	problem.ID = s.ProblemID
	problem.Pattern = &model.PatternRef{ID: problem.PatternID, Name: patternName}
	s.User = &user
	s.Problem = &problem
	return nil
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, screenshot_url, notes, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.UserID, s.ProblemID, s.ScreenshotURL, s.Notes, s.Status).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		switch common.PgErrorCode(err) {
		case common.PgForeignKeyViolation:
			return fmt.Errorf("problem does not exist: %w", common.ErrBadRequest)
		case common.PgInvalidTextRep:
			return fmt.Errorf("malformed problem_id: %w", common.ErrBadRequest)
		}
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	sub := &model.Submission{}
	if err := scanSubmission(r.db.QueryRowContext(ctx, submissionSelect+` WHERE s.id = $1`, id), sub); err != nil {
		if errors.Is(err, sql.ErrNoRows) || common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	var query strings.Builder
	query.WriteString(submissionSelect)

	var conditions []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.UserID != "" {
		add("s.user_id", filter.UserID)
	}
	if filter.ProblemID != "" {
		add("s.problem_id", filter.ProblemID)
	}
	if filter.PatternID != "" {
		add("p.pattern_id", filter.PatternID)
	}
	if filter.Status != "" {
		add("s.status", filter.Status)
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY s.created_at DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		if common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, fmt.Errorf("malformed filter id: %w", common.ErrBadRequest)
		}
		return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissions query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := scanSubmission(rows, &s); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissions scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissions rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) UpdateSubmissionContent(ctx context.Context, id string, notes *string, screenshotURL string) (*model.Submission, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET notes = $1, screenshot_url = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		notes, screenshotURL, id)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.UpdateSubmissionContent: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetSubmissionByID(ctx, id)
}

func (r *pgSubmissionRepository) UpdateSubmissionStatus(ctx context.Context, id string, status model.SubmissionStatus, adminNotes *string, reviewerID string) (*model.Submission, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE submissions
		 SET status = $1, admin_notes = $2, reviewed_by = $3, reviewed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		status, adminNotes, reviewerID, id)
	if err != nil {
		if common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.UpdateSubmissionStatus: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetSubmissionByID(ctx, id)
}

func (r *pgSubmissionRepository) DeleteSubmission(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		if common.PgErrorCode(err) == common.PgInvalidTextRep {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgSubmissionRepository.DeleteSubmission: %w", err)
	}
	return requireAffected(res)
}

func (r *pgSubmissionRepository) ListSolvedProblems(ctx context.Context, userID string) ([]model.SolvedProblem, error) {
	query := `
        SELECT DISTINCT p.id, p.difficulty, p.pattern_id
        FROM submissions s
        JOIN problems p ON p.id = s.problem_id
        WHERE s.user_id = $1 AND s.status = $2`
	rows, err := r.db.QueryContext(ctx, query, userID, model.SubmissionApproved)
	if err != nil {
		if common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblems query: %w", err)
	}
	defer rows.Close()

	solved := []model.SolvedProblem{}
	for rows.Next() {
		var sp model.SolvedProblem
		if err := rows.Scan(&sp.ProblemID, &sp.Difficulty, &sp.PatternID); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblems scan: %w", err)
		}
		solved = append(solved, sp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblems rows.Err: %w", err)
	}
	return solved, nil
}

func (r *pgSubmissionRepository) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	query := `
        SELECT u.id, u.full_name, COUNT(s.id)
        FROM users u
        LEFT JOIN submissions s ON s.user_id = u.id AND s.status = $1
        GROUP BY u.id, u.full_name`
	rows, err := r.db.QueryContext(ctx, query, model.SubmissionApproved)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.FullName, &e.SolvedCount); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard rows.Err: %w", err)
	}
	return entries, nil
}
