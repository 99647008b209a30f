// Package sqlerr turns database driver errors into API errors.
//
// Both drivers in use are understood: go-ora reports ORA-nnnnn codes, pgx
// reports SQLSTATE codes. Each is mapped onto a shared Code so the rest
// of the app can switch on "unique violation" without knowing which
// database raised it.
package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sijms/go-ora/v2/network"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ("X_OWNER"."WORKFLOWS"."NAME") in ORA-01400 and friends.
	oracleColumnRef = regexp.MustCompile(`\("([^"]+)"\."([^"]+)"\."([^"]+)"\)`)

	// (X_OWNER.WORKFLOWS_NAME_UK) in ORA-00001, ORA-02290, ORA-02291.
	oracleConstraintRef = regexp.MustCompile(`\(([A-Za-z0-9_$#"]+)\.([A-Za-z0-9_$#"]+)\)`)

	uniqueKeySuffix = regexp.MustCompile(`_([^_]+)_(?:key|ukey|uk)$`)
)

// ErrCode reports the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// Convert normalises a driver error. It returns nil when err carries
// neither an Oracle nor a Postgres error.
func Convert(err error) *Error {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return ConvertOracleError(oraErr)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr)
	}

	return nil
}

// ConvertPgError maps a Postgres error, keeping the table and column
// metadata the server sends along.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// ConvertOracleError maps an ORA error. Oracle does not send structured
// metadata, so schema, table, column and constraint are parsed from the
// message text when present.
func ConvertOracleError(src *network.OracleError) *Error {
	sqlErr := &Error{
		Code:         MapOracleCode(src.ErrCode),
		Severity:     SeverityError,
		DatabaseCode: fmt.Sprintf("ORA-%05d", src.ErrCode),
		Message:      src.ErrMsg,
		driverErr:    src,
	}

	if m := oracleColumnRef.FindStringSubmatch(src.ErrMsg); m != nil {
		sqlErr.SchemaName = m[1]
		sqlErr.TableName = strings.ToLower(m[2])
		sqlErr.ColumnName = strings.ToLower(m[3])
	} else if m := oracleConstraintRef.FindStringSubmatch(src.ErrMsg); m != nil {
		sqlErr.SchemaName = strings.Trim(m[1], `"`)
		sqlErr.ConstraintName = strings.ToLower(strings.Trim(m[2], `"`))
	}

	return sqlErr
}

// generateErrorCode builds a machine code like WORKFLOW_ALREADY_EXISTS.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, DataException:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case DataException:
		return "One or more values have an invalid format or size"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers the base of a *_id column, then the singular table
// name, then "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		entity := strings.ToLower(tableName)
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns first_name into First Name.
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(text), "_", " "))
}

// extractColumnForUniqueViolation reads the column out of constraint names
// following unique_<table>_<column> or <table>_<column>_(key|ukey|uk).
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}
	constraintName = strings.ToLower(constraintName)

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueKeySuffix.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}
