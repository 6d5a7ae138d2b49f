// Package errors provides coded domain errors with localized user messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeDuplicateKey        Code = "DUPLICATE_KEY"
	CodeInvalidFormat       Code = "INVALID_FORMAT"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"
	CodeCascadeInconsistent Code = "CASCADE_INCONSISTENT"

	// Station errors
	CodeStationDepartamentoEmpty Code = "STATION_DEPARTAMENTO_EMPTY"
	CodeStationLocalidadEmpty    Code = "STATION_LOCALIDAD_EMPTY"
	CodeStationInvalidSoftware   Code = "STATION_INVALID_SOFTWARE"

	// Review errors
	CodeReviewStationEmpty  Code = "REVIEW_STATION_EMPTY"
	CodeReviewInvalidFecha  Code = "REVIEW_INVALID_FECHA"
	CodeReviewInvalidEstado Code = "REVIEW_INVALID_ESTADO"

	// Query errors
	CodeFilterInvalid Code = "FILTER_INVALID"

	// Auth errors
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthPermissionDenied   Code = "AUTH_PERMISSION_DENIED"
	CodeAuthSessionMissing     Code = "AUTH_SESSION_MISSING"
	CodeAuthSessionExpired     Code = "AUTH_SESSION_EXPIRED"
)

// Process exit statuses reported by the CLI for each error category.
const (
	ExitInternal     = 1
	ExitInvalidInput = 2
	ExitNotFound     = 3
	ExitConflict     = 4
	ExitDenied       = 5
	ExitStorage      = 6
)

// ExitCode maps domain codes to CLI exit statuses.
func (c Code) ExitCode() int {
	switch c {
	case CodeInvalidFormat,
		CodeStationDepartamentoEmpty,
		CodeStationLocalidadEmpty,
		CodeStationInvalidSoftware,
		CodeReviewStationEmpty,
		CodeReviewInvalidFecha,
		CodeReviewInvalidEstado,
		CodeFilterInvalid:
		return ExitInvalidInput

	case CodeNotFound:
		return ExitNotFound

	case CodeDuplicateKey:
		return ExitConflict

	case CodeAuthInvalidCredentials,
		CodeAuthPermissionDenied,
		CodeAuthSessionMissing,
		CodeAuthSessionExpired:
		return ExitDenied

	case CodeStorageUnavailable,
		CodeCascadeInconsistent:
		return ExitStorage

	default:
		return ExitInternal
	}
}
