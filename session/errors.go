// ABOUTME: User-facing authentication error taxonomy
// ABOUTME: Maps provider codes to the short messages shown on login and signup
package session

import "github.com/harperreed/shaft/auth"

// Kind classifies an AuthError.
type Kind string

const (
	KindNoSuchAccount Kind = "no-such-account"
	KindWrongPassword Kind = "wrong-password"
	KindInvalidEmail  Kind = "invalid-email"
	KindEmailInUse    Kind = "email-in-use"
	KindWeakPassword  Kind = "weak-password"
	KindGeneric       Kind = "generic"
)

// AuthError is a login or signup failure ready for display.
type AuthError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

func loginError(err error) *AuthError {
	switch auth.CodeOf(err) {
	case auth.CodeUserNotFound:
		return &AuthError{Kind: KindNoSuchAccount, Message: "No account exists with this email", Err: err}
	case auth.CodeWrongPassword:
		return &AuthError{Kind: KindWrongPassword, Message: "Incorrect password", Err: err}
	case auth.CodeInvalidEmail:
		return &AuthError{Kind: KindInvalidEmail, Message: "Invalid email address", Err: err}
	default:
		return &AuthError{Kind: KindGeneric, Message: "Failed to login", Err: err}
	}
}

func signupError(err error) *AuthError {
	switch auth.CodeOf(err) {
	case auth.CodeEmailAlreadyInUse:
		return &AuthError{Kind: KindEmailInUse, Message: "An account already exists with this email", Err: err}
	case auth.CodeInvalidEmail:
		return &AuthError{Kind: KindInvalidEmail, Message: "Invalid email address", Err: err}
	case auth.CodeWeakPassword:
		return &AuthError{Kind: KindWeakPassword, Message: "Password should be at least 6 characters", Err: err}
	default:
		return &AuthError{Kind: KindGeneric, Message: "Failed to create account", Err: err}
	}
}
