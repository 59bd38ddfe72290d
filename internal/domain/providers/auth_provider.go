package providers

import "context"

// RegistrationRequest is the payload forwarded to the external auth service
type RegistrationRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	AppName   string `json:"app_name"`
	Role      string `json:"role"`
}

// RegistrationResult is the auth service's successful response. SetCookie
// carries the session cookie to forward to the client verbatim.
type RegistrationResult struct {
	UserID      string `json:"id"`
	AccessToken string `json:"access_token"`
	SetCookie   string `json:"-"`
}

// AuthProvider is the external auth service. Credential validation (including
// the password1/password2 match) is entirely its responsibility; this service
// only creates a local user row after the provider succeeds.
type AuthProvider interface {
	Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error)
}
