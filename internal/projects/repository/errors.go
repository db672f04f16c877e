package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// wrap turns a driver error into a *domain.StoreError. nil stays nil.
func wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StoreError{Op: op, Table: table, Kind: classify(err), Err: err}
}

func classify(err error) domain.StoreErrorKind {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, domain.ErrNotFound):
		return domain.KindNoRows
	case errors.Is(err, domain.ErrDecode):
		return domain.KindDecode
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.KindCanceled
	case errors.Is(err, driver.ErrBadConn):
		return domain.KindConnection
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		code := string(pgErr.Code)
		switch {
		case code == "23505":
			return domain.KindConflict
		case code == "23503":
			return domain.KindForeignKey
		case strings.HasPrefix(code, "42"):
			return domain.KindSchema
		case strings.HasPrefix(code, "08"):
			return domain.KindConnection
		}
	}
	return domain.KindUnknown
}
