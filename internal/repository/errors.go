// Package repository provides data access for mixing assets and exported mixes.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Repository-level sentinel errors. Services map these onto API errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrDataTooLong indicates data exceeds column capacity.
	ErrDataTooLong = errors.New("data too long for column")

	// ErrInvalidTransition indicates a status change the job state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// MySQL server error numbers handled by ParseDBError.
const (
	mysqlDuplicateEntry = 1062
	mysqlDataTooLong    = 1406
)

// ParseDBError converts gorm and MySQL errors into repository errors.
func ParseDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case mysqlDataTooLong:
			return fmt.Errorf("%w: %v", ErrDataTooLong, err)
		}
		return err
	}

	// Wrapped driver errors sometimes only survive as text.
	switch msg := err.Error(); {
	case strings.Contains(msg, "Duplicate entry"):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case strings.Contains(msg, "Data too long"):
		return fmt.Errorf("%w: %v", ErrDataTooLong, err)
	}
	return err
}
