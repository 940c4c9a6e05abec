package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies failures surfaced by repositories and services
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindExternalService
	KindInternalStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindExternalService:
		return "external_service"
	case KindInternalStorage:
		return "internal_storage"
	default:
		return "unknown"
	}
}

// Entity names used in error messages
const (
	EntityTransaction = "transaction"
	EntityCategory    = "category"
	EntityRule        = "categorization rule"
	EntityCredential  = "credential"
)

// LedgerError is the typed error returned by the ledger core. Code selects
// the API error code the failure is reported with.
type LedgerError struct {
	Kind    Kind
	Code    ErrorCode
	Entity  string
	ID      string
	Count   int64
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NotFound reports that the entity with the given id does not exist
func NotFound(entity string, id fmt.Stringer) *LedgerError {
	return &LedgerError{
		Kind:    KindNotFound,
		Code:    notFoundCode(entity),
		Entity:  entity,
		ID:      id.String(),
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// Conflict reports an integrity violation such as a duplicate name
func Conflict(code ErrorCode, message string, err error) *LedgerError {
	return &LedgerError{Kind: KindConflict, Code: code, Message: message, Err: err}
}

// ReferencedConflict reports that an entity cannot be deleted while count
// other records reference it
func ReferencedConflict(entity string, id fmt.Stringer, count int64) *LedgerError {
	return &LedgerError{
		Kind:    KindConflict,
		Code:    CategoryInUse,
		Entity:  entity,
		ID:      id.String(),
		Count:   count,
		Message: fmt.Sprintf("cannot delete %s %s: referenced by %d transaction(s)", entity, id, count),
	}
}

// InvalidInput reports a malformed or missing field
func InvalidInput(code ErrorCode, message string, err error) *LedgerError {
	return &LedgerError{Kind: KindInvalidInput, Code: code, Message: message, Err: err}
}

// ExternalService reports a failure of the suggestion collaborator
func ExternalService(code ErrorCode, message string, err error) *LedgerError {
	return &LedgerError{Kind: KindExternalService, Code: code, Message: message, Err: err}
}

// InternalStorage wraps a failure of the underlying store
func InternalStorage(operation string, err error) *LedgerError {
	return &LedgerError{
		Kind:    KindInternalStorage,
		Code:    SystemDatabaseError,
		Message: "failed to " + operation,
		Err:     err,
	}
}

// KindOf returns the kind of the first LedgerError in err's chain
func KindOf(err error) Kind {
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a NotFound ledger error
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a Conflict ledger error
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsInvalidInput reports whether err is an InvalidInput ledger error
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsExternalService reports whether err is an ExternalService ledger error
func IsExternalService(err error) bool { return KindOf(err) == KindExternalService }

// IsInternalStorage reports whether err is an InternalStorage ledger error
func IsInternalStorage(err error) bool { return KindOf(err) == KindInternalStorage }

// AsLedgerError extracts the LedgerError from err's chain
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	ok := stderrors.As(err, &le)
	return le, ok
}

// CodeFor maps an error to the API error code it should be reported with.
// Errors outside the ledger taxonomy map to SystemInternalError.
func CodeFor(err error) ErrorCode {
	le, ok := AsLedgerError(err)
	if !ok {
		return SystemInternalError
	}
	if le.Code != "" {
		return le.Code
	}

	switch le.Kind {
	case KindNotFound:
		return SystemNotFound
	case KindConflict:
		return CategoryAlreadyExists
	case KindInvalidInput:
		return ValidationGeneral
	case KindExternalService:
		return AIServiceUnavailable
	case KindInternalStorage:
		return SystemDatabaseError
	default:
		return SystemInternalError
	}
}

func notFoundCode(entity string) ErrorCode {
	switch entity {
	case EntityTransaction:
		return TransactionNotFound
	case EntityCategory:
		return CategoryNotFound
	case EntityRule:
		return RuleNotFound
	case EntityCredential:
		return CredentialNotFound
	default:
		return SystemNotFound
	}
}
