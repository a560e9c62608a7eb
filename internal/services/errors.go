// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindPersistence
	KindUnauthenticated
	KindForbidden
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is the error type every service returns for caller-visible failures.
// Key is an i18n key; Err is never shown to clients.
type Error struct {
	Kind   ErrorKind
	Key    string
	Fields []utils.ValidationError
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Key)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(key string, err error) *Error {
	return &Error{Kind: KindValidation, Key: key, Fields: utils.GetValidationErrors(err), Err: err}
}

func newNotFoundError(key string) *Error {
	return &Error{Kind: KindNotFound, Key: key}
}

func newConflictError(key string, err error) *Error {
	return &Error{Kind: KindConflict, Key: key, Err: err}
}

func newPersistenceError(err error) *Error {
	return &Error{Kind: KindPersistence, Key: i18n.KeyInternalError, Err: err}
}

// KindOf returns the kind of a service error, or KindPersistence for anything else.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindPersistence
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsForbidden(err error) bool  { return err != nil && KindOf(err) == KindForbidden }
func IsConflict(err error) bool   { return err != nil && KindOf(err) == KindConflict }

func IsUnauthenticated(err error) bool {
	return err != nil && KindOf(err) == KindUnauthenticated
}

// RequireActor rejects anonymous callers of write paths.
func RequireActor(actor *models.Actor) error {
	if actor == nil {
		return &Error{Kind: KindUnauthenticated, Key: i18n.KeyAuthRequired}
	}
	return nil
}

func RequireAdmin(actor *models.Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return &Error{Kind: KindForbidden, Key: i18n.KeyAdminAccessDenied}
	}
	return nil
}

// validationKey picks the message key for the first failing field, falling
// back to the generic invalid-input key.
func validationKey(err error, byField map[string]string) string {
	for _, field := range utils.GetValidationErrors(err) {
		if key, ok := byField[field.Field]; ok {
			return key
		}
	}
	return i18n.KeyValidationInvalid
}
