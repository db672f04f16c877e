package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

const assumptionColumns = "id, project_id, canvas_area, statement, status, validation_stage, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

// assumptionRow mirrors a project_assumptions row with every nullable column explicit.
type assumptionRow struct {
	ID         sql.NullString
	ProjectID  sql.NullString
	CanvasArea sql.NullString
	Statement  sql.NullString
	Status     sql.NullString
	Stage      sql.NullInt64
	CreatedAt  sql.NullTime
	UpdatedAt  sql.NullTime
}

func (r *assumptionRow) dest() []any {
	return []any{&r.ID, &r.ProjectID, &r.CanvasArea, &r.Statement, &r.Status, &r.Stage, &r.CreatedAt, &r.UpdatedAt}
}

func (r *assumptionRow) toDomain() (domain.Assumption, error) {
	switch {
	case !r.ID.Valid || r.ID.String == "":
		return domain.Assumption{}, fmt.Errorf("%w: assumption without id", domain.ErrDecode)
	case !r.ProjectID.Valid:
		return domain.Assumption{}, fmt.Errorf("%w: assumption %s without project_id", domain.ErrDecode, r.ID.String)
	case !r.CanvasArea.Valid:
		return domain.Assumption{}, fmt.Errorf("%w: assumption %s without canvas_area", domain.ErrDecode, r.ID.String)
	}

	a := domain.Assumption{
		ID:         r.ID.String,
		ProjectID:  r.ProjectID.String,
		CanvasArea: domain.CanvasArea(r.CanvasArea.String),
		Statement:  r.Statement.String,
		Status:     r.Status.String,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
	if r.Stage.Valid {
		a.ValidationStage = domain.Stage(r.Stage.Int64)
		if !a.ValidationStage.Valid() {
			return domain.Assumption{}, fmt.Errorf("%w: assumption %s has validation_stage %d", domain.ErrDecode, r.ID.String, r.Stage.Int64)
		}
	}
	return a, nil
}

// CountAssumptions returns how many assumptions the project owns.
func (s *Store) CountAssumptions(ctx context.Context, projectID string) (int, error) {
	const q = `SELECT count(*) FROM project_assumptions WHERE project_id = $1;`

	var n int
	if err := s.db.QueryRowContext(ctx, q, projectID).Scan(&n); err != nil {
		return 0, wrap("count", tableAssumptions, err)
	}
	return n, nil
}

// ListAssumptions returns every assumption of the project in creation order.
func (s *Store) ListAssumptions(ctx context.Context, projectID string) ([]domain.Assumption, error) {
	q := `
SELECT ` + assumptionColumns + `
FROM project_assumptions
WHERE project_id = $1
ORDER BY created_at ASC, id ASC;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, wrap("list", tableAssumptions, err)
	}
	defer rows.Close()

	out := make([]domain.Assumption, 0, 16)
	for rows.Next() {
		a, err := scanAssumption(rows)
		if err != nil {
			return nil, wrap("list", tableAssumptions, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", tableAssumptions, err)
	}
	return out, nil
}

func scanAssumption(sc rowScanner) (domain.Assumption, error) {
	var r assumptionRow
	if err := sc.Scan(r.dest()...); err != nil {
		return domain.Assumption{}, err
	}
	return r.toDomain()
}

// UpdateAssumptionStage sets validation_stage on one assumption.
func (s *Store) UpdateAssumptionStage(ctx context.Context, id string, stage domain.Stage) error {
	const q = `
UPDATE project_assumptions
SET validation_stage = $2, updated_at = now()
WHERE id = $1;
`
	result, err := s.db.ExecContext(ctx, q, id, int(stage))
	if err != nil {
		return wrap("update", tableAssumptions, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrap("update", tableAssumptions, err)
	}
	if n == 0 {
		return wrap("update", tableAssumptions, sql.ErrNoRows)
	}
	return nil
}

// DeleteAssumptions removes every assumption of the project.
func (s *Store) DeleteAssumptions(ctx context.Context, projectID string) (int64, error) {
	const q = `DELETE FROM project_assumptions WHERE project_id = $1;`

	result, err := s.db.ExecContext(ctx, q, projectID)
	if err != nil {
		return 0, wrap("delete", tableAssumptions, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, wrap("delete", tableAssumptions, err)
	}
	return n, nil
}

// InsertAssumptions writes all rows in one INSERT ... SELECT FROM unnest so
// the batch either lands completely or not at all. Each column travels as a
// single array parameter, which keeps the statement under the bind limit
// regardless of row count.
func (s *Store) InsertAssumptions(ctx context.Context, rows []domain.Assumption) error {
	if len(rows) == 0 {
		return nil
	}

	q := `
INSERT INTO project_assumptions (` + assumptionColumns + `)
SELECT t.id, t.project_id, t.canvas_area, t.statement, t.status, t.validation_stage,
       COALESCE(t.created_at::timestamptz, now()), COALESCE(t.updated_at::timestamptz, now())
FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::int[], $7::text[], $8::text[])
  AS t(id, project_id, canvas_area, statement, status, validation_stage, created_at, updated_at);
`
	var (
		ids        = make([]string, len(rows))
		projectIDs = make([]string, len(rows))
		areas      = make([]string, len(rows))
		statements = make([]string, len(rows))
		statuses   = make([]string, len(rows))
		stages     = make([]sql.NullInt64, len(rows))
		created    = make([]sql.NullString, len(rows))
		updated    = make([]sql.NullString, len(rows))
	)
	for i, a := range rows {
		ids[i] = a.ID
		projectIDs[i] = a.ProjectID
		areas[i] = string(a.CanvasArea)
		statements[i] = a.Statement
		statuses[i] = a.Status
		stages[i] = nullStage(a.ValidationStage)
		created[i] = nullTimestamp(a.CreatedAt)
		updated[i] = nullTimestamp(a.UpdatedAt)
	}

	_, err := s.db.ExecContext(ctx, q,
		pq.Array(ids),
		pq.Array(projectIDs),
		pq.Array(areas),
		pq.Array(statements),
		pq.Array(statuses),
		pq.Array(stages),
		pq.Array(created),
		pq.Array(updated),
	)
	if err != nil {
		return wrap("insert", tableAssumptions, err)
	}
	return nil
}

// ListAssumptionBackups returns the rows of the project's newest backup
// generation. Assumptions missing from that generation are not restored,
// even if an older generation holds them.
func (s *Store) ListAssumptionBackups(ctx context.Context, projectID string) ([]domain.AssumptionBackup, error) {
	q := `
SELECT ` + assumptionColumns + `, backed_up_at
FROM project_assumptions_backup
WHERE project_id = $1
  AND backed_up_at = (
    SELECT max(backed_up_at) FROM project_assumptions_backup WHERE project_id = $1
  )
ORDER BY id ASC;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, wrap("list", tableBackups, err)
	}
	defer rows.Close()

	out := make([]domain.AssumptionBackup, 0, 16)
	for rows.Next() {
		var (
			r          assumptionRow
			backedUpAt sql.NullTime
		)
		if err := rows.Scan(append(r.dest(), &backedUpAt)...); err != nil {
			return nil, wrap("list", tableBackups, err)
		}
		a, err := r.toDomain()
		if err != nil {
			return nil, wrap("list", tableBackups, err)
		}
		out = append(out, domain.AssumptionBackup{Assumption: a, BackedUpAt: backedUpAt.Time})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", tableBackups, err)
	}
	return out, nil
}

// SnapshotAssumptions copies the project's live assumptions into the backup table.
func (s *Store) SnapshotAssumptions(ctx context.Context, projectID string, at time.Time) (int64, error) {
	q := `
INSERT INTO project_assumptions_backup (` + assumptionColumns + `, backed_up_at)
SELECT ` + assumptionColumns + `, $2
FROM project_assumptions
WHERE project_id = $1;
`
	result, err := s.db.ExecContext(ctx, q, projectID, at)
	if err != nil {
		return 0, wrap("insert", tableBackups, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, wrap("insert", tableBackups, err)
	}
	return n, nil
}

func nullStage(s domain.Stage) sql.NullInt64 {
	if s == domain.StageUnset {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(s), Valid: true}
}

// nullTimestamp renders t as a text[] element that Postgres casts to
// timestamptz. The zero time becomes NULL so the column default applies.
func nullTimestamp(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}
