package migration

import (
	"errors"
	"fmt"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// FailureKind classifies why an operation, or one step of it, failed.
type FailureKind string

const (
	KindNotFound         FailureKind = "NotFound"
	KindFetchFailure     FailureKind = "FetchFailure"
	KindRowUpdateFailure FailureKind = "RowUpdateFailure"
	KindMarkerWrite      FailureKind = "MarkerWriteFailure"
	KindNoBackupFound    FailureKind = "NoBackupFound"
	KindDeleteFailure    FailureKind = "DeleteFailure"
	KindInsertFailure    FailureKind = "InsertFailure"
	KindSnapshotFailure  FailureKind = "SnapshotFailure"
	KindLockUnavailable  FailureKind = "LockUnavailable"
	KindCanceled         FailureKind = "Canceled"
)

// Failure is one reportable error. AssumptionID is set for row-level failures.
type Failure struct {
	Kind         FailureKind `json:"kind"`
	AssumptionID string      `json:"assumption_id,omitempty"`
	Message      string      `json:"message"`

	err error
}

func (f *Failure) Error() string {
	if f.AssumptionID != "" {
		return fmt.Sprintf("%s: assumption %s: %s", f.Kind, f.AssumptionID, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.err
}

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), err: err}
}

// fetchFailure maps a read error, turning a missing project into NotFound.
func fetchFailure(err error) *Failure {
	if errors.Is(err, domain.ErrNotFound) {
		return newFailure(KindNotFound, err)
	}
	return newFailure(KindFetchFailure, err)
}

func lockFailure(err error) *Failure {
	if errors.Is(err, domain.ErrLockHeld) {
		return newFailure(KindLockUnavailable, err)
	}
	return newFailure(KindLockUnavailable, fmt.Errorf("acquire lock: %w", err))
}

// IsKind reports whether err is a *Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}
