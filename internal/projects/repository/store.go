package repository

import (
	"context"
	"database/sql"
)

const (
	tableProjects    = "projects"
	tableAssumptions = "project_assumptions"
	tableBackups     = "project_assumptions_backup"
)

// DBTX is the common interface satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// Store provides typed access to the projects, project_assumptions and
// project_assumptions_backup tables. Every call is a single statement.
type Store struct {
	db DBTX
}

// NewStore creates a new record store
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}
