package reconcile_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"effectif_back_end/internal/identity"
	"effectif_back_end/internal/reconcile"
)

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want reconcile.FailureCategory
	}{
		{
			name: "code email_exists",
			err:  &identity.ProviderError{Status: 422, Code: "email_exists", Message: "whatever"},
			want: reconcile.Duplicate,
		},
		{
			name: "code user_already_exists",
			err:  &identity.ProviderError{Status: 400, Code: "user_already_exists"},
			want: reconcile.Duplicate,
		},
		{
			name: "code email_address_taken",
			err:  &identity.ProviderError{Status: 400, Code: "email_address_taken"},
			want: reconcile.Duplicate,
		},
		{
			name: "code weak_password",
			err:  &identity.ProviderError{Status: 422, Code: "weak_password", Message: "Password should be at least 6 characters"},
			want: reconcile.InvalidCredential,
		},
		{
			name: "code not_admin",
			err:  &identity.ProviderError{Status: 403, Code: "not_admin"},
			want: reconcile.PermissionDenied,
		},
		{
			name: "code no_authorization",
			err:  &identity.ProviderError{Status: 401, Code: "no_authorization"},
			want: reconcile.PermissionDenied,
		},
		{
			name: "code insufficient_aal",
			err:  &identity.ProviderError{Status: 403, Code: "insufficient_aal"},
			want: reconcile.PermissionDenied,
		},
		{
			// Le code prime sur le texte du message.
			name: "code prioritaire sur message",
			err:  &identity.ProviderError{Status: 422, Code: "weak_password", Message: "email already registered"},
			want: reconcile.InvalidCredential,
		},
		{
			name: "message already been registered",
			err:  &identity.ProviderError{Status: 400, Message: "A user with this email address has already been registered"},
			want: reconcile.Duplicate,
		},
		{
			name: "message already exists",
			err:  &identity.ProviderError{Status: 500, Message: "user already exists"},
			want: reconcile.Duplicate,
		},
		{
			name: "message password at least",
			err:  &identity.ProviderError{Status: 422, Message: "Password should be at least 6 characters"},
			want: reconcile.InvalidCredential,
		},
		{
			name: "message password too short",
			err:  &identity.ProviderError{Status: 422, Message: "password too short"},
			want: reconcile.InvalidCredential,
		},
		{
			// "password" seul, sans qualificatif de longueur/faiblesse, ne
			// suffit pas à classer.
			name: "message password sans qualificatif",
			err:  &identity.ProviderError{Status: 500, Message: "password hashing unavailable"},
			want: reconcile.Transient,
		},
		{
			name: "status 401 sans code ni message",
			err:  &identity.ProviderError{Status: 401, Message: "nope"},
			want: reconcile.PermissionDenied,
		},
		{
			name: "status 403 sans code ni message",
			err:  &identity.ProviderError{Status: 403, Message: "forbidden"},
			want: reconcile.PermissionDenied,
		},
		{
			name: "status 500 inconnu",
			err:  &identity.ProviderError{Status: 500, Message: "internal error"},
			want: reconcile.Transient,
		},
		{
			name: "erreur enveloppée",
			err:  fmt.Errorf("appel fournisseur: %w", &identity.ProviderError{Status: 422, Code: "email_exists"}),
			want: reconcile.Duplicate,
		},
		{
			name: "erreur réseau brute",
			err:  errors.New("dial tcp: connection refused"),
			want: reconcile.Transient,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reconcile.ClassifyFailure(tc.err))
		})
	}
}

func TestClassifyFailureDeterministe(t *testing.T) {
	// Même entrée, même catégorie, à chaque appel.
	err := &identity.ProviderError{Status: 422, Code: "email_exists", Message: "Password should be at least 6 characters"}
	first := reconcile.ClassifyFailure(err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, reconcile.ClassifyFailure(err))
	}
}

func TestFailureCategoryString(t *testing.T) {
	assert.Equal(t, "transient", reconcile.Transient.String())
	assert.Equal(t, "duplicate", reconcile.Duplicate.String())
	assert.Equal(t, "invalid_credential", reconcile.InvalidCredential.String())
	assert.Equal(t, "permission_denied", reconcile.PermissionDenied.String())
}

func TestRejectionUnwrap(t *testing.T) {
	inner := &identity.ProviderError{Status: 403, Message: "forbidden"}
	rej := &reconcile.Rejection{Category: reconcile.PermissionDenied, Err: inner}

	var pe *identity.ProviderError
	assert.True(t, errors.As(rej, &pe))
	assert.Contains(t, rej.Error(), "permission_denied")
}
