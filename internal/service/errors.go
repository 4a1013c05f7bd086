package service

// The service layer classifies every failure into one of four caller-facing
// kinds. Handlers match with errors.As and map them onto HTTP statuses:
// validation/conflict → 400, not-found → 404, provisioning → 500. Messages
// are the user-visible strings the admin frontend already displays, so they
// stay in Portuguese; the technical cause travels in the wrapped error and
// is logged, never returned to the caller.

// ValidationError: missing or malformed input. No mutation happened.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError: duplicate church name. No mutation happened.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError: the referenced client id does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// ProvisioningError: a failure during database/schema creation, seeding, or
// a cross-database lifecycle step. Effects up to the failing step persist
// and are not rolled back; the operator inspects, the caller gets a 500.
type ProvisioningError struct {
	Msg string
	Err error
}

func (e *ProvisioningError) Error() string { return e.Msg }

func (e *ProvisioningError) Unwrap() error { return e.Err }
