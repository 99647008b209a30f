package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/oracle-automation/internal/database"
	"github.com/deppfellow/oracle-automation/internal/errs"
)

// HandleError converts an error bubbling out of a repository or service
// into an *errs.HTTPError:
//   - an *errs.HTTPError is returned unchanged
//   - pool exhaustion and connection failures become 503
//   - constraint violations and bad values become 400
//   - serialization failures and deadlocks become 409
//   - sql.ErrNoRows becomes 404, named after a "table:<name>:" prefix if
//     the error message carries one
//   - anything else is a 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case errors.Is(err, database.ErrPoolTimeout):
		return errs.NewServiceUnavailableError("The database is busy, no connection became available in time")
	case errors.Is(err, context.DeadlineExceeded):
		return errs.NewServiceUnavailableError("The database did not answer in time")
	}

	if sqlErr := Convert(err); sqlErr != nil {
		return handleSQLError(sqlErr)
	}

	if errors.Is(err, sql.ErrNoRows) {
		errMsg := err.Error()
		tablePrefix := "table:"
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(table, "")), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

func handleSQLError(sqlErr *Error) error {
	errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return errs.NewBadRequestError(userMessage, false, &errorCode, nil, nil)

	case UniqueViolation:
		if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
			userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
		}
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

	case NotNullViolation:
		fieldErrors := []errs.FieldError{
			{
				Field: strings.ToLower(sqlErr.ColumnName),
				Error: "is required",
			},
		}
		return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

	case CheckViolation, DataException:
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

	case SerializationFailure, DeadlockDetected:
		return errs.NewConflictError("The request conflicted with a concurrent change", true)

	case ConnectionFailure, QueryCanceled:
		return errs.NewServiceUnavailableError("The database is unavailable")

	default:
		return errs.NewInternalServerError()
	}
}
