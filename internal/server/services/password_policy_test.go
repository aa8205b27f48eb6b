package services

import (
	"testing"

	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		code     string
	}{
		{"ok", "c0rrect-Horse", "user@example.com", ""},
		{"too short", "ab1!", "user@example.com", apierror.CodePasswordTooShort},
		{"numeric", "1234567890", "user@example.com", apierror.CodePasswordNumeric},
		{"similar to local part", "johnsmith1", "johnsmith@example.com", apierror.CodePasswordTooSimilar},
		{"similar to whole email", "JohnSmith@Example.com", "johnsmith@example.com", apierror.CodePasswordTooSimilar},
		{"no email", "c0rrect-Horse", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := apierror.FieldErrors{}
			checkPassword(fields, "password", tt.password, tt.email)
			if tt.code == "" {
				assert.Empty(t, fields)
				return
			}
			assert.Equal(t, tt.code, fields["password"].Code)
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
	assert.Equal(t, 0.0, similarity("", ""))
	assert.InDelta(t, 0.5, similarity("abcd", "cdxy"), 1e-9)
}
