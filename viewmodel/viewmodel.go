// ABOUTME: Collaborator interfaces and error type shared by every screen controller
// ABOUTME: Controllers depend on these instead of concrete session, router or dialog types
package viewmodel

import (
	"context"
	"errors"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
)

// Routes controllers navigate to.
const (
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
)

// SessionSource is the observable session the controllers read.
type SessionSource interface {
	Current() *models.Session
	Subscribe(fn func(*models.Session)) (unsubscribe func())
}

// SessionManager adds the auth operations used by the login, register and
// dashboard screens.
type SessionManager interface {
	SessionSource
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Signup(ctx context.Context, email, password, displayName string) (*models.Session, error)
	Logout(ctx context.Context) error
}

// Navigator moves the user to another screen.
type Navigator interface {
	Redirect(path string)
}

// Confirmer asks the user a yes/no question before destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ContactStore is the contact repository surface controllers use.
type ContactStore interface {
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Contact, error)
	Create(ctx context.Context, userID string, in repository.ContactInput) (models.Contact, error)
	Update(ctx context.Context, id string, in repository.ContactInput) error
	Delete(ctx context.Context, id string) error
}

type DealStore interface {
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Deal, error)
	Create(ctx context.Context, userID string, in repository.DealInput) (models.Deal, error)
	Update(ctx context.Context, id string, in repository.DealInput) error
	Delete(ctx context.Context, id string) error
}

type TaskStore interface {
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Task, error)
	Create(ctx context.Context, userID string, in repository.TaskInput) (models.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

type EventStore interface {
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Event, error)
	Create(ctx context.Context, userID string, in repository.EventInput) (models.Event, error)
	Reschedule(ctx context.Context, id string, start, end docstore.Timestamp) error
	Delete(ctx context.Context, id string) error
}

// ErrNoSession is returned by actions attempted while signed out.
var ErrNoSession = errors.New("not signed in")

// Error is a failure already phrased for the user. Validation errors never
// reached a repository.
type Error struct {
	Message    string
	Validation bool
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error {
	return &Error{Message: msg, Validation: true}
}

func failure(msg string, err error) *Error {
	return &Error{Message: msg, Err: err}
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Validation
}

// AlwaysConfirm approves every prompt; for non-interactive callers that
// already asked.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(string) bool { return true }

// NopNavigator ignores redirects.
type NopNavigator struct{}

func (NopNavigator) Redirect(string) {}
