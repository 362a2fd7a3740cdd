package service

import "errors"

// Sentinel errors shared across the record verification services. Handlers
// map these onto HTTP status codes; none of them triggers a retry.
var (
	// ErrRecordNotFound indicates the addressed record does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrForbidden indicates the principal lacks the required ownership or
	// reviewer relationship.
	ErrForbidden = errors.New("operation not permitted for this principal")
	// ErrDecisionConflict indicates a decision was attempted on a record that
	// is no longer pending.
	ErrDecisionConflict = errors.New("record already decided")
	// ErrInvalidTransition indicates the requested status change is not a
	// legal verification transition.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrRecordNotEditable indicates an owner edit on a record that already
	// left the pending state.
	ErrRecordNotEditable = errors.New("record is no longer editable")
	// ErrCategoryUnknown indicates an unrecognised record category.
	ErrCategoryUnknown = errors.New("unknown record category")
	// ErrMissingDocument indicates a document reference that no longer
	// resolves at the document store.
	ErrMissingDocument = errors.New("document missing from store")
	// ErrDocumentTooLarge indicates an upload above the configured limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
	// ErrDocumentTypeNotAllowed indicates an upload with an unsupported MIME type.
	ErrDocumentTypeNotAllowed = errors.New("document type not allowed")
	// ErrAccountNotFound indicates the addressed account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)

// FieldValidationError reports a category field payload that failed
// validation at submission or edit time.
type FieldValidationError struct {
	Field  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return "invalid field " + e.Field + ": " + e.Reason
}
