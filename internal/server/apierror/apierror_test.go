package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Classification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		known  bool
	}{
		{"typed", UserNotFound(), http.StatusNotFound, CodeUserNotFound, true},
		{"wrapped typed", fmt.Errorf("ctx: %w", PermissionDenied()), http.StatusForbidden, CodePermissionDenied, true},
		{"bad credentials", common.ErrInvalidCredentials, http.StatusUnauthorized, CodeBadCredentials, true},
		{"not authenticated", common.ErrNotAuthenticated, http.StatusUnauthorized, CodeNotAuthenticated, true},
		{"invalid token", common.ErrInvalidToken, http.StatusUnauthorized, CodeTokenNotValid, true},
		{"expired token", fmt.Errorf("x: %w", common.ErrTokenExpired), http.StatusUnauthorized, CodeTokenNotValid, true},
		{"blacklisted", common.ErrTokenBlacklisted, http.StatusUnauthorized, CodeTokenNotValid, true},
		{"permission", common.ErrPermissionDenied, http.StatusForbidden, CodePermissionDenied, true},
		{"not found", common.ErrorNotFound, http.StatusNotFound, CodeNotFound, true},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, CodeInternal, false},
		{"nil", nil, http.StatusInternalServerError, CodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := Normalize(tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestNormalize_DoesNotLeakDetail(t *testing.T) {
	got, _ := Normalize(errors.New("pq: password authentication failed for user admin"))
	assert.Equal(t, "Internal server error", got.Message)
	assert.Empty(t, got.Fields)
}

func TestFieldErrors_FirstWins(t *testing.T) {
	f := FieldErrors{}
	assert.NoError(t, f.Err())

	f.Add("email", CodeEmailExist, "Email is exist")
	f.Add("email", CodeRequired, "This field is required.")
	f.Add("info.gender", CodeInvalidChoice, `"x" is not a valid choice.`)

	err := f.Err()
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeValidation, apiErr.Code)
	assert.Equal(t, CodeEmailExist, apiErr.Fields["email"].Code)
	assert.Equal(t, "email=email_exist,info.gender=invalid_choice", apiErr.Error()[len("400 validation_error: "):])
}

func TestEnvelope_WireShape(t *testing.T) {
	b, err := json.Marshal(Field("info.gender", CodeInvalidChoice, "bad").Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"status_code":400,
		"details":{"message":"Validation error","code":"validation_error"},
		"fields":{"info.gender":{"message":"bad","code":"invalid_choice"}}}}`, string(b))

	b, err = json.Marshal(MethodNotAllowed("PUT").Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"status_code":405,
		"details":{"message":"Method \"PUT\" not allowed.","code":"method_not_allowed"}}}`, string(b))
}
