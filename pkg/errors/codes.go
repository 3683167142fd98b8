package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
	ErrCodeStorageError       ErrorCode = "COMMON_013"

	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Coordinate and graph format codes.
const (
	// ErrCodeCoordFormat marks malformed coordinate text: wrong column count,
	// non-numeric field, unknown element symbol, or invalid isotope.
	ErrCodeCoordFormat ErrorCode = "COORD_001"

	// ErrCodeAdjlistFormat marks a malformed adjacency-list graph: bad atom
	// line, asymmetric bonds, or unrecognized bond order.
	ErrCodeAdjlistFormat ErrorCode = "COORD_002"
)

// Species module codes.
const (
	// ErrCodeNoDescriptor is raised when none of SMILES, InChI, or the graph
	// adjacency list could be resolved for a submitted species.
	ErrCodeNoDescriptor ErrorCode = "SPC_001"

	// ErrCodeMultiplicityMismatch is raised when the declared spin
	// multiplicity cannot be reconciled with the multiplicity implied by the
	// resolved adjacency list.
	ErrCodeMultiplicityMismatch ErrorCode = "SPC_002"

	// ErrCodeSpeciesInvalid aggregates cross-field consistency violations of
	// a species record; the attached violations identify each offending field.
	ErrCodeSpeciesInvalid ErrorCode = "SPC_003"

	ErrCodeSpeciesNotFound  ErrorCode = "SPC_004"
	ErrCodeSpeciesExists    ErrorCode = "SPC_005"
	ErrCodeSpeciesRetracted ErrorCode = "SPC_006"
)

// Oracle (external structure-conversion service) codes.
const (
	// ErrCodeOracleUnavailable is a soft outcome: the conversion service
	// could not be reached or returned no mapping.  It escalates to
	// ErrCodeNoDescriptor only when no resolution path yields a descriptor.
	ErrCodeOracleUnavailable ErrorCode = "ORA_001"

	// ErrCodeOracleBadInput marks a malformed descriptor handed to the
	// oracle adapter (e.g., an empty SMILES string).
	ErrCodeOracleBadInput ErrorCode = "ORA_002"
)

// HTTPStatusForCode maps an ErrorCode to the HTTP status the interface layer
// should respond with.
func HTTPStatusForCode(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case ErrCodeBadRequest, ErrCodeValidation,
		ErrCodeCoordFormat, ErrCodeAdjlistFormat,
		ErrCodeNoDescriptor, ErrCodeMultiplicityMismatch,
		ErrCodeSpeciesInvalid, ErrCodeOracleBadInput:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeSpeciesNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeSpeciesExists, ErrCodeSpeciesRetracted:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable, ErrCodeOracleUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the code denotes a 4xx-class failure.
func IsClientError(code ErrorCode) bool {
	s := HTTPStatusForCode(code)
	return s >= 400 && s < 500
}

// IsServerError reports whether the code denotes a 5xx-class failure.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}

// ModuleForCode returns the module prefix of a code ("COMMON", "COORD",
// "SPC", "ORA"), used as a metric label.
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return s
}
