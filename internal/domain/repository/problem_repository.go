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

type ProblemRepository interface {
	CreateProblem(ctx context.Context, problem *model.Problem) error
	UpdateProblem(ctx context.Context, problem *model.Problem) error
	DeleteProblem(ctx context.Context, id string) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	ListProblems(ctx context.Context, filter model.ProblemFilter) ([]model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemSelect = `
        SELECT p.id, p.title, p.problem_link, p.youtube_url, p.our_video_url, p.difficulty, p.platform,
               p.pattern_id, p.created_by, p.created_at, p.updated_at, pt.name
        FROM problems p
        JOIN patterns pt ON pt.id = p.pattern_id`

func scanProblem(row interface{ Scan(...any) error }, p *model.Problem) error {
	var patternName string
	err := row.Scan(&p.ID, &p.Title, &p.ProblemLink, &p.YoutubeURL, &p.OurVideoURL, &p.Difficulty, &p.Platform,
		&p.PatternID, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt, &patternName)
	if err != nil {
		return err
	}
	p.Pattern = &model.PatternRef{ID: p.PatternID, Name: patternName}
	return nil
}

// patternWriteError translates FK failures on pattern_id into a client error.
func patternWriteError(op string, err error) error {
	switch common.PgErrorCode(err) {
	case common.PgForeignKeyViolation:
		return fmt.Errorf("pattern does not exist: %w", common.ErrBadRequest)
	case common.PgInvalidTextRep:
		return fmt.Errorf("malformed id: %w", common.ErrBadRequest)
	}
	return fmt.Errorf("pgProblemRepository.%s: %w", op, err)
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, problem_link, youtube_url, our_video_url, difficulty, platform, pattern_id, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Title, p.ProblemLink, p.YoutubeURL, p.OurVideoURL,
		p.Difficulty, p.Platform, p.PatternID, p.CreatedByID).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return patternWriteError("CreateProblem", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblem(ctx context.Context, p *model.Problem) error {
	query := `UPDATE problems SET
                title = $1, problem_link = $2, youtube_url = $3, our_video_url = $4,
                difficulty = $5, platform = $6, pattern_id = $7, updated_at = CURRENT_TIMESTAMP
              WHERE id = $8
              RETURNING created_by, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Title, p.ProblemLink, p.YoutubeURL, p.OurVideoURL,
		p.Difficulty, p.Platform, p.PatternID, p.ID).Scan(&p.CreatedByID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return patternWriteError("UpdateProblem", err)
	}
	return nil
}

// DeleteProblem also removes the problem's submissions (ON DELETE CASCADE).
func (r *pgProblemRepository) DeleteProblem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		if common.PgErrorCode(err) == common.PgInvalidTextRep {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgProblemRepository.DeleteProblem: %w", err)
	}
	return requireAffected(res)
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	problem := &model.Problem{}
	err := scanProblem(r.db.QueryRowContext(ctx, problemSelect+` WHERE p.id = $1`, id), problem)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindProblemByID: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context, filter model.ProblemFilter) ([]model.Problem, error) {
	var query strings.Builder
	query.WriteString(problemSelect)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.PatternID != "" {
		conditions = append(conditions, fmt.Sprintf("p.pattern_id = $%d", argID))
		args = append(args, filter.PatternID)
		argID++
	}
	if filter.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("p.difficulty = $%d", argID))
		args = append(args, filter.Difficulty)
		argID++
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY p.created_at DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		if common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, fmt.Errorf("malformed pattern_id: %w", common.ErrBadRequest)
		}
		return nil, fmt.Errorf("pgProblemRepository.ListProblems query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		var p model.Problem
		if err := scanProblem(rows, &p); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems rows.Err: %w", err)
	}
	return problems, nil
}
