package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicate          = errors.New("duplicate key")
	ErrNoCopiesAvailable  = errors.New("no copies available")
	ErrOpenBorrowExists   = errors.New("open borrow already exists")
	ErrBorrowLimitReached = errors.New("open borrow limit reached")
	ErrBookHasOpenBorrows = errors.New("book has open borrows")
)

// IsUniqueViolation reports whether err comes from a unique constraint, whichever
// driver produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver level errors onto the package errors.
func translate(err error) error {
	if IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
