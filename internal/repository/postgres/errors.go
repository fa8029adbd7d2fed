package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/lib/pq"

	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// mapError translates driver errors into domain sentinels. Context errors and
// unknown errors pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %s", pkgerrors.ErrConcurrencyConflict, pqErr.Message)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", pkgerrors.ErrConflict, pqErr.Constraint)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", pkgerrors.ErrConflict, pqErr.Constraint)
		case codeCheckViolation:
			return fmt.Errorf("%w: %s", pkgerrors.ErrValidation, pqErr.Constraint)
		}
	}
	return err
}
