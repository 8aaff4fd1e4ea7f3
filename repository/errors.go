package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateKey reports a unique-constraint violation. The service
// layer translates it into a client-facing validation error.
var ErrDuplicateKey = errors.New("repository: duplicate key")

// ErrLockConflict reports a deadlock or lock wait timeout between
// concurrent writers. Surfaced to clients as a retryable conflict.
var ErrLockConflict = errors.New("repository: lock conflict")

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			return fmt.Errorf("%w: %v", ErrLockConflict, err)
		}
	}
	return err
}
