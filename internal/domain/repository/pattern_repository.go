package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"
)

type PatternRepository interface {
	Create(ctx context.Context, pattern *model.Pattern) error
	Update(ctx context.Context, pattern *model.Pattern) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Pattern, error)
	List(ctx context.Context) ([]model.Pattern, error)
}

type pgPatternRepository struct {
	db *sql.DB
}

func NewPgPatternRepository(db *sql.DB) PatternRepository {
	return &pgPatternRepository{db: db}
}

func (r *pgPatternRepository) Create(ctx context.Context, p *model.Pattern) error {
	query := `INSERT INTO patterns (id, name, slug, description, created_by)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Slug, p.Description, p.CreatedByID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.PgErrorCode(err) == common.PgUniqueViolation {
			return fmt.Errorf("pattern with this name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgPatternRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPatternRepository) Update(ctx context.Context, p *model.Pattern) error {
	query := `UPDATE patterns SET name = $1, slug = $2, description = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4
	          RETURNING created_by, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Slug, p.Description, p.ID).
		Scan(&p.CreatedByID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), common.PgErrorCode(err) == common.PgInvalidTextRep:
			return common.ErrNotFound
		case common.PgErrorCode(err) == common.PgUniqueViolation:
			return fmt.Errorf("pattern with this name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgPatternRepository.Update: %w", err)
	}
	return nil
}

// Delete fails with ErrConflict while problems still reference the pattern (ON DELETE RESTRICT).
func (r *pgPatternRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = $1`, id)
	if err != nil {
		switch common.PgErrorCode(err) {
		case common.PgForeignKeyViolation:
			return fmt.Errorf("pattern is still used by problems: %w", common.ErrConflict)
		case common.PgInvalidTextRep:
			return common.ErrNotFound
		}
		return fmt.Errorf("pgPatternRepository.Delete: %w", err)
	}
	return requireAffected(res)
}

func (r *pgPatternRepository) FindByID(ctx context.Context, id string) (*model.Pattern, error) {
	query := `
        SELECT p.id, p.name, p.slug, p.description, p.created_by, p.created_at, p.updated_at,
               (SELECT COUNT(*) FROM problems pr WHERE pr.pattern_id = p.id)
        FROM patterns p
        WHERE p.id = $1`
	p := &model.Pattern{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt, &p.ProblemCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || common.PgErrorCode(err) == common.PgInvalidTextRep {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPatternRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgPatternRepository) List(ctx context.Context) ([]model.Pattern, error) {
	query := `
        SELECT p.id, p.name, p.slug, p.description, p.created_by, p.created_at, p.updated_at,
               COUNT(pr.id)
        FROM patterns p
        LEFT JOIN problems pr ON pr.pattern_id = p.id
        GROUP BY p.id
        ORDER BY p.name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPatternRepository.List query: %w", err)
	}
	defer rows.Close()

	patterns := []model.Pattern{}
	for rows.Next() {
		var p model.Pattern
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt, &p.ProblemCount); err != nil {
			return nil, fmt.Errorf("pgPatternRepository.List scan: %w", err)
		}
		patterns = append(patterns, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPatternRepository.List rows.Err: %w", err)
	}
	return patterns, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
