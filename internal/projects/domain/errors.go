package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("project not found")
	ErrDecode   = errors.New("unexpected row shape")
	ErrLockHeld = errors.New("project is locked by another migration")
)

// StoreErrorKind classifies a failed store call.
type StoreErrorKind string

const (
	KindNoRows     StoreErrorKind = "no_rows"
	KindDecode     StoreErrorKind = "decode"
	KindConflict   StoreErrorKind = "conflict"
	KindForeignKey StoreErrorKind = "foreign_key"
	KindSchema     StoreErrorKind = "schema"
	KindConnection StoreErrorKind = "connection"
	KindCanceled   StoreErrorKind = "canceled"
	KindUnknown    StoreErrorKind = "unknown"
)

// StoreError is returned by every record store call that fails.
type StoreError struct {
	Op    string
	Table string
	Kind  StoreErrorKind
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
