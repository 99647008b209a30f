package sqlerr

import "strings"

// Code is a driver independent error category.
type Code string

const (
	Other                Code = "other"
	UniqueViolation      Code = "unique_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	NotNullViolation     Code = "not_null_violation"
	CheckViolation       Code = "check_violation"
	DataException        Code = "data_exception"
	UndefinedTable       Code = "undefined_table"
	UndefinedColumn      Code = "undefined_column"
	SerializationFailure Code = "serialization_failure"
	DeadlockDetected     Code = "deadlock_detected"
	QueryCanceled        Code = "query_canceled"
	ConnectionFailure    Code = "connection_failure"
)

// Severity mirrors the Postgres severity levels. Oracle errors are always
// SeverityError.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalised database error. The driver error stays reachable
// through Unwrap.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return string(e.Severity) + ": " + e.Message + " (" + e.DatabaseCode + ")"
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

var pgCodes = map[string]Code{
	"23505": UniqueViolation,
	"23503": ForeignKeyViolation,
	"23502": NotNullViolation,
	"23514": CheckViolation,
	"42P01": UndefinedTable,
	"42703": UndefinedColumn,
	"40001": SerializationFailure,
	"40P01": DeadlockDetected,
	"57014": QueryCanceled,
}

// MapCode maps a SQLSTATE. Whole classes are matched for data exceptions
// (22) and connection exceptions (08).
func MapCode(sqlState string) Code {
	if code, ok := pgCodes[sqlState]; ok {
		return code
	}

	switch {
	case strings.HasPrefix(sqlState, "22"):
		return DataException
	case strings.HasPrefix(sqlState, "08"):
		return ConnectionFailure
	}
	return Other
}

var oracleCodes = map[int]Code{
	1:     UniqueViolation,      // unique constraint violated
	2291:  ForeignKeyViolation,  // parent key not found
	2292:  ForeignKeyViolation,  // child record found
	1400:  NotNullViolation,     // cannot insert NULL
	1407:  NotNullViolation,     // cannot update to NULL
	2290:  CheckViolation,       // check constraint violated
	1722:  DataException,        // invalid number
	1438:  DataException,        // value larger than precision
	12899: DataException,        // value too large for column
	1843:  DataException,        // not a valid month
	1861:  DataException,        // literal does not match format
	942:   UndefinedTable,       // table or view does not exist
	904:   UndefinedColumn,      // invalid identifier
	8177:  SerializationFailure, // can't serialize access
	60:    DeadlockDetected,
	1013:  QueryCanceled, // user requested cancel
	3113:  ConnectionFailure,
	3114:  ConnectionFailure,
	3135:  ConnectionFailure,
	1017:  ConnectionFailure, // invalid username/password
	12170: ConnectionFailure,
	12514: ConnectionFailure, // listener does not know of service
	12541: ConnectionFailure, // no listener
	12543: ConnectionFailure,
}

// MapOracleCode maps the numeric part of an ORA-nnnnn code.
func MapOracleCode(code int) Code {
	if c, ok := oracleCodes[code]; ok {
		return c
	}
	return Other
}

// MapSeverity maps a Postgres severity string; unknown values become
// SeverityError.
func MapSeverity(severity string) Severity {
	switch Severity(strings.ToUpper(severity)) {
	case SeverityFatal:
		return SeverityFatal
	case SeverityPanic:
		return SeverityPanic
	case SeverityWarning:
		return SeverityWarning
	case SeverityNotice:
		return SeverityNotice
	case SeverityDebug:
		return SeverityDebug
	case SeverityInfo:
		return SeverityInfo
	case SeverityLog:
		return SeverityLog
	default:
		return SeverityError
	}
}
