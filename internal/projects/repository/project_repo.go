package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// GetProject reads a single project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
SELECT id, user_id, name, beachhead_data, v2_migrated_at, created_at, updated_at
FROM projects
WHERE id = $1;
`
	var (
		p          domain.Project
		userID     sql.NullString
		name       sql.NullString
		beachhead  []byte
		migratedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &userID, &name, &beachhead, &migratedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wrap("get", tableProjects, domain.ErrNotFound)
		}
		return nil, wrap("get", tableProjects, err)
	}
	if p.ID == "" {
		return nil, wrap("get", tableProjects, fmt.Errorf("%w: empty project id", domain.ErrDecode))
	}

	p.UserID = userID.String
	p.Name = name.String
	if len(beachhead) > 0 {
		p.BeachheadData = append([]byte(nil), beachhead...)
	}
	if migratedAt.Valid {
		t := migratedAt.Time
		p.MigratedAt = &t
	}
	return &p, nil
}

// SetMigratedAt sets the V2 migration marker. A nil time clears it.
func (s *Store) SetMigratedAt(ctx context.Context, projectID string, at *time.Time) error {
	const q = `
UPDATE projects
SET v2_migrated_at = $2, updated_at = now()
WHERE id = $1;
`
	var marker sql.NullTime
	if at != nil {
		marker = sql.NullTime{Time: *at, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, q, projectID, marker)
	if err != nil {
		return wrap("update", tableProjects, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrap("update", tableProjects, err)
	}
	if n == 0 {
		return wrap("update", tableProjects, domain.ErrNotFound)
	}
	return nil
}

// ListPendingProjects returns ids of projects without a migration marker that
// own at least one assumption, oldest first.
func (s *Store) ListPendingProjects(ctx context.Context, limit int) ([]string, error) {
	const q = `
SELECT p.id
FROM projects p
WHERE p.v2_migrated_at IS NULL
  AND EXISTS (SELECT 1 FROM project_assumptions a WHERE a.project_id = p.id)
ORDER BY p.created_at ASC
LIMIT $1;
`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, wrap("list", tableProjects, err)
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("list", tableProjects, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", tableProjects, err)
	}
	return out, nil
}
