// ABOUTME: Authentication service boundary consumed by the session cache
// ABOUTME: Names the provider error codes the client distinguishes; everything else is generic
package auth

import (
	"context"
	"errors"
	"fmt"
)

// Provider error codes.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeNoCurrentUser     = "auth/no-current-user"
	CodeInternal          = "auth/internal-error"
)

// MinPasswordLength is the shortest password CreateAccount accepts.
const MinPasswordLength = 6

// User is the principal reported by the provider.
type User struct {
	UID         string
	Email       string
	DisplayName string
}

// Error is a coded provider failure.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the provider code from err, or "" for uncoded errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Provider is an external auth service. All calls may block on I/O.
//
// OnAuthStateChanged delivers the current principal (nil when signed out)
// asynchronously: once right after subscribing and again after every
// transition, in order. The returned func unsubscribes.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	CreateAccount(ctx context.Context, email, password string) (*User, error)
	UpdateProfile(ctx context.Context, displayName string) error
	SignOut(ctx context.Context) error
	OnAuthStateChanged(fn func(*User)) (unsubscribe func())
}
