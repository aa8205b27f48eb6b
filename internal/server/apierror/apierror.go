// Package apierror defines the typed failures surfaced to API callers and
// the envelope they are rendered into.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/researchdt/internal/common"
)

// NonFieldErrors is the path used for failures not tied to a single field.
const NonFieldErrors = "non_field_errors"

const (
	CodeValidation       = "validation_error"
	CodeParse            = "parse_error"
	CodeBadCredentials   = "bad_credentials"
	CodeNotAuthenticated = "not_authenticated"
	CodeTokenNotValid    = "token_not_valid"
	CodePermissionDenied = "permission_denied"
	CodeUserNotFound     = "user_not_found"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_server_error"

	CodeRequired             = "required"
	CodeInvalid              = "invalid"
	CodeInvalidChoice        = "invalid_choice"
	CodeMinLength            = "min_length"
	CodeMaxLength            = "max_length"
	CodeBlank                = "blank"
	CodeMinValue             = "min_value"
	CodeMaxValue             = "max_value"
	CodeEmailExist           = "email_exist"
	CodeEmailIsNotExist      = "email_is_not_exist"
	CodeOldPasswordIncorrect = "old_password_incorrect"
	CodeResetDataInvalid     = "reset_data_invalid"
	CodePasswordTooShort     = "password_too_short"
	CodePasswordNumeric      = "password_entirely_numeric"
	CodePasswordTooSimilar   = "password_too_similar"
)

// Detail is a message/code pair.
type Detail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error is a classified failure. Fields is set only for validation errors
// and maps dotted field paths to the first problem found on that field.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]Detail
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p+"="+e.Fields[p].Code)
	}
	sort.Strings(paths)
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, strings.Join(paths, ","))
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// FieldErrors collects field-level problems. The first problem recorded for
// a path wins.
type FieldErrors map[string]Detail

func (f FieldErrors) Add(path, code, message string) {
	if _, ok := f[path]; ok {
		return
	}
	f[path] = Detail{Message: message, Code: code}
}

// Err returns nil when nothing was collected.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f)
}

// Validation wraps field errors into a 400 validation_error.
func Validation(fields FieldErrors) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: "Validation error",
		Fields:  fields,
	}
}

// Field is a validation error on a single path.
func Field(path, code, message string) *Error {
	f := FieldErrors{}
	f.Add(path, code, message)
	return Validation(f)
}

func ParseError() *Error {
	return New(http.StatusBadRequest, CodeParse, "Malformed request")
}

func BadCredentials() *Error {
	return New(http.StatusUnauthorized, CodeBadCredentials, "Invalid email or password")
}

func NotAuthenticated() *Error {
	return New(http.StatusUnauthorized, CodeNotAuthenticated, "Authentication credentials were not provided.")
}

func TokenNotValid(message string) *Error {
	return New(http.StatusUnauthorized, CodeTokenNotValid, message)
}

func PermissionDenied() *Error {
	return New(http.StatusForbidden, CodePermissionDenied, "You do not have permission to perform this action.")
}

func UserNotFound() *Error {
	return New(http.StatusNotFound, CodeUserNotFound, "User not found")
}

func NotFound() *Error {
	return New(http.StatusNotFound, CodeNotFound, "Not found")
}

func MethodNotAllowed(method string) *Error {
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", method))
}

func Internal() *Error {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// Normalize classifies err. The boolean is false when err was not
// recognised and has been folded into a generic internal error.
func Normalize(err error) (*Error, bool) {
	var apiErr *Error
	switch {
	case err == nil:
		return Internal(), false
	case errors.As(err, &apiErr):
		return apiErr, true
	case errors.Is(err, common.ErrInvalidCredentials):
		return BadCredentials(), true
	case errors.Is(err, common.ErrNotAuthenticated):
		return NotAuthenticated(), true
	case errors.Is(err, common.ErrTokenBlacklisted):
		return TokenNotValid("Token is blacklisted"), true
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return TokenNotValid("Token is invalid or expired"), true
	case errors.Is(err, common.ErrPermissionDenied):
		return PermissionDenied(), true
	case errors.Is(err, common.ErrorNotFound):
		return NotFound(), true
	default:
		return Internal(), false
	}
}
