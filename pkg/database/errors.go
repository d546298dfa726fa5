package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind groups backend errors into the few cases handlers care about.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicate
	KindForeignKey
	KindInvalidInput
	KindMissingTable
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
	pgUndefinedTable      = "42P01"
)

// Classify maps a gorm or postgres error to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindDuplicate
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return KindForeignKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return KindDuplicate
		case pgForeignKeyViolation:
			return KindForeignKey
		case pgInvalidTextRepr:
			return KindInvalidInput
		case pgUndefinedTable:
			return KindMissingTable
		}
	}

	// sqlite (tests) reports constraint failures as plain text.
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "unique constraint failed"):
		return KindDuplicate
	case strings.Contains(message, "foreign key constraint failed"):
		return KindForeignKey
	case strings.Contains(message, "no such table"):
		return KindMissingTable
	}

	return KindUnknown
}

// IsDuplicate reports a unique constraint violation.
func IsDuplicate(err error) bool {
	return Classify(err) == KindDuplicate
}
