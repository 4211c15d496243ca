// Package apperr carries typed error kinds from the data layer up to the
// HTTP boundary, so handlers never inspect error strings.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Kind string

const (
	KindInvalid      Kind = "INVALID"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindExpired      Kind = "EXPIRED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindMissingTable Kind = "MISSING_TABLE"
	KindUpstream     Kind = "UPSTREAM"
	KindInternal     Kind = "INTERNAL"
)

// Error is the single error type services return.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) WithDetails(d any) *Error {
	e.Details = d
	return e
}

func (e *Error) WithHint(h string) *Error {
	e.Hint = h
	return e
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Invalid(msg string) *Error      { return New(KindInvalid, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func Expired(msg string) *Error      { return New(KindExpired, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }

func Internal(msg string, err error) *Error { return Wrap(KindInternal, msg, err) }
func Upstream(msg string, err error) *Error { return Wrap(KindUpstream, msg, err) }

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

/* =========================
   Driver error classification
========================= */

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgUndefinedTable      = "42P01"
)

// FromDB classifies a database error. msg becomes the user-facing message;
// nil stays nil and *Error values pass through untouched.
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(KindNotFound, msg, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(KindConflict, msg, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Wrap(KindInvalid, msg, err)
	}

	if code := pgCode(err); code != "" {
		switch code {
		case pgUniqueViolation:
			return Wrap(KindConflict, msg, err)
		case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation:
			return Wrap(KindInvalid, msg, err)
		case pgUndefinedTable:
			return Wrap(KindMissingTable, msg, err).
				WithHint("run `churchctl migrate` to create the schema")
		}
	}
	return Wrap(KindInternal, msg, err)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsNotFound is a shorthand used on lookups that treat "missing" as a branch.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || Is(err, KindNotFound)
}
