package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeCacheError      ErrorCode = "COMMON_013"
	ErrCodeExternalService ErrorCode = "COMMON_014"
	ErrCodeUnknown         ErrorCode = "COMMON_999"
)

// Aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrCodeUnknown
	CodeOK           = ErrorCode("OK")

	CodeMoleculeInvalidSMILES = ErrCodeMoleculeInvalidSMILES
	CodePatternInvalid        = ErrCodeSubstructurePatternInvalid
	CodeReactionMalformed     = ErrCodeReactionMalformed
	CodeReactionEmptySide     = ErrCodeReactionEmptySide
	CodeEnzymeCodeInvalid     = ErrCodeEnzymeCodeInvalid
	CodeRecordTooLong         = ErrCodeRecordTooLong
	CodeConfigInvalid         = ErrCodeConfigInvalid
	CodeIOFailure             = ErrCodeIOFailure
	CodeCacheError            = ErrCodeCacheError
	CodeStorageError          = ErrCodeStorageFailed
	CodeMessageQueueError     = ErrCodeEventPublishFailed
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES      ErrorCode = "MOL_001"
	ErrCodeMoleculeValenceViolation   ErrorCode = "MOL_002"
	ErrCodeMoleculeUnsupportedFeature ErrorCode = "MOL_003"
	ErrCodeSubstructurePatternInvalid ErrorCode = "MOL_012"
)

// Reaction Module Error Codes
const (
	ErrCodeReactionMalformed  ErrorCode = "RXN_001"
	ErrCodeReactionEmptySide  ErrorCode = "RXN_002"
	ErrCodeEnzymeCodeInvalid  ErrorCode = "RXN_003"
	ErrCodeTokenizedMalformed ErrorCode = "RXN_004"
	ErrCodeRecordTooLong      ErrorCode = "RXN_005"
)

// Filter Module Codes.  These classify deliberate drops, not failures; they
// are carried as AppError so the pipeline can count them uniformly.
const (
	ErrCodeFilterPatternMatched  ErrorCode = "FILTER_001"
	ErrCodeFilterMoleculeMatched ErrorCode = "FILTER_002"
	ErrCodeFilterAtomCount       ErrorCode = "FILTER_003"
	ErrCodeFilterMaxProducts     ErrorCode = "FILTER_004"
	ErrCodeFilterEmptyEnzyme     ErrorCode = "FILTER_005"
)

// Configuration / IO Error Codes
const (
	ErrCodeConfigInvalid ErrorCode = "CFG_001"
	ErrCodeIOFailure     ErrorCode = "IO_001"
)

// Infrastructure Error Codes
const (
	ErrCodeStorageFailed      ErrorCode = "INFRA_001"
	ErrCodeEventPublishFailed ErrorCode = "INFRA_002"
	ErrCodeMetricsExport      ErrorCode = "INFRA_003"
)

// Category groups error codes into the taxonomy used by run reports.
type Category string

const (
	CategoryParse          Category = "parse"
	CategoryFilter         Category = "filter"
	CategoryConfiguration  Category = "configuration"
	CategoryIO             Category = "io"
	CategoryInfrastructure Category = "infrastructure"
	CategoryInternal       Category = "internal"
)

// ErrorCodeCategory maps ErrorCodes to taxonomy categories.
var ErrorCodeCategory = map[ErrorCode]Category{
	ErrCodeMoleculeInvalidSMILES:      CategoryParse,
	ErrCodeMoleculeValenceViolation:   CategoryParse,
	ErrCodeMoleculeUnsupportedFeature: CategoryParse,
	ErrCodeReactionMalformed:          CategoryParse,
	ErrCodeReactionEmptySide:          CategoryParse,
	ErrCodeEnzymeCodeInvalid:          CategoryParse,
	ErrCodeTokenizedMalformed:         CategoryParse,
	ErrCodeRecordTooLong:              CategoryParse,

	ErrCodeFilterPatternMatched:  CategoryFilter,
	ErrCodeFilterMoleculeMatched: CategoryFilter,
	ErrCodeFilterAtomCount:       CategoryFilter,
	ErrCodeFilterMaxProducts:     CategoryFilter,
	ErrCodeFilterEmptyEnzyme:     CategoryFilter,

	ErrCodeConfigInvalid:              CategoryConfiguration,
	ErrCodeValidation:                 CategoryConfiguration,
	ErrCodeBadRequest:                 CategoryConfiguration,
	ErrCodeSubstructurePatternInvalid: CategoryConfiguration,

	ErrCodeIOFailure: CategoryIO,

	ErrCodeStorageFailed:      CategoryInfrastructure,
	ErrCodeEventPublishFailed: CategoryInfrastructure,
	ErrCodeMetricsExport:      CategoryInfrastructure,
	ErrCodeCacheError:         CategoryInfrastructure,
	ErrCodeExternalService:    CategoryInfrastructure,
}

// ErrorCodeExitStatus maps categories to CLI exit statuses.
var ErrorCodeExitStatus = map[Category]int{
	CategoryConfiguration:  2,
	CategoryIO:             3,
	CategoryInfrastructure: 4,
	CategoryParse:          5,
	CategoryInternal:       1,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeTimeout:         "timeout",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeCacheError:      "cache error",
	ErrCodeExternalService: "external service error",

	ErrCodeMoleculeInvalidSMILES:      "invalid SMILES",
	ErrCodeMoleculeValenceViolation:   "valence violation",
	ErrCodeMoleculeUnsupportedFeature: "unsupported SMILES feature",
	ErrCodeSubstructurePatternInvalid: "invalid substructure pattern",

	ErrCodeReactionMalformed:  "malformed reaction record",
	ErrCodeReactionEmptySide:  "reaction side is empty",
	ErrCodeEnzymeCodeInvalid:  "unparseable enzyme code",
	ErrCodeTokenizedMalformed: "malformed tokenized reaction",
	ErrCodeRecordTooLong:      "input line exceeds the line limit",

	ErrCodeFilterPatternMatched:  "excluded substructure pattern matched",
	ErrCodeFilterMoleculeMatched: "excluded molecule matched",
	ErrCodeFilterAtomCount:       "side emptied by minimum atom count",
	ErrCodeFilterMaxProducts:     "product count above ceiling",
	ErrCodeFilterEmptyEnzyme:     "enzyme code missing",

	ErrCodeConfigInvalid: "invalid configuration",
	ErrCodeIOFailure:     "input/output failure",

	ErrCodeStorageFailed:      "object storage operation failed",
	ErrCodeEventPublishFailed: "event publishing failed",
	ErrCodeMetricsExport:      "metrics export failed",
}

// CategoryForCode returns the taxonomy category of an ErrorCode.
func CategoryForCode(code ErrorCode) Category {
	if c, ok := ErrorCodeCategory[code]; ok {
		return c
	}
	return CategoryInternal
}

// ExitStatusForError returns the process exit status for err.
func ExitStatusForError(err error) int {
	if err == nil {
		return 0
	}
	if status, ok := ErrorCodeExitStatus[CategoryForCode(GetCode(err))]; ok {
		return status
	}
	return 1
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
