package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
)

var ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "invalid email or password")

// Admin is the single configured back-office account.
type Admin struct {
	Email string `json:"email"`
}

// AdminAuthenticator checks credentials against the configured admin.
type AdminAuthenticator struct {
	email        string
	passwordHash string
	hasher       PasswordHasher
}

func NewAdminAuthenticator(email, passwordHash string, hasher PasswordHasher) *AdminAuthenticator {
	return &AdminAuthenticator{
		email:        strings.TrimSpace(email),
		passwordHash: passwordHash,
		hasher:       hasher,
	}
}

// Login returns the admin when email and password match. The password is
// compared even for an unknown email so both failures take the same time.
func (a *AdminAuthenticator) Login(_ context.Context, email, password string) (*Admin, error) {
	emailOK := strings.EqualFold(strings.TrimSpace(email), a.email)
	passErr := a.hasher.Compare(a.passwordHash, password)
	if !emailOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &Admin{Email: a.email}, nil
}

// Lookup returns the admin for a token subject.
func (a *AdminAuthenticator) Lookup(_ context.Context, email string) (*Admin, error) {
	if !strings.EqualFold(email, a.email) {
		return nil, ErrInvalidCredentials
	}
	return &Admin{Email: a.email}, nil
}
