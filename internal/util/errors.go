package util

import (
	"errors"
	"fmt"
)

// Error classes. Domain errors wrap one of these so HandleError can map them
// to a status code.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrTokenRevoked       = fmt.Errorf("%w: token revoked", ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("%w: account is not active", ErrForbidden)
	ErrEmailRegistered    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrCannotDeleteSelf   = fmt.Errorf("%w: administrators cannot delete their own account", ErrValidation)

	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrCourseNotFound   = fmt.Errorf("%w: course not found", ErrNotFound)
	ErrModuleNotFound   = fmt.Errorf("%w: module not found", ErrNotFound)
	ErrResourceNotFound = fmt.Errorf("%w: resource not found", ErrNotFound)
	ErrNoCreatorProfile = fmt.Errorf("%w: no creator profile available to own the course", ErrValidation)

	ErrAlreadyEnrolled = fmt.Errorf("%w: already enrolled in this course", ErrConflict)
	ErrNotEnrolled     = fmt.Errorf("%w: not enrolled in this course", ErrNotFound)
	ErrStudentsOnly    = fmt.Errorf("%w: only available to students", ErrForbidden)

	ErrExamNotFound     = fmt.Errorf("%w: exam not found", ErrNotFound)
	ErrExamInactive     = fmt.Errorf("%w: exam is not active", ErrValidation)
	ErrAttemptNotFound  = fmt.Errorf("%w: attempt not found", ErrNotFound)
	ErrAttemptCompleted = fmt.Errorf("%w: attempt already submitted", ErrConflict)
	ErrUnknownQuestion  = fmt.Errorf("%w: question does not belong to this attempt", ErrValidation)

	ErrThreadNotFound = fmt.Errorf("%w: thread not found", ErrNotFound)
	ErrThreadClosed   = fmt.Errorf("%w: thread is closed", ErrValidation)
	ErrReplyNotFound  = fmt.Errorf("%w: reply not found", ErrNotFound)

	ErrCommunityResourceNotFound = fmt.Errorf("%w: community resource not found", ErrNotFound)
	ErrInvalidRating             = fmt.Errorf("%w: score must be between 1 and 5", ErrValidation)

	ErrSurveyNotFound   = fmt.Errorf("%w: survey not found", ErrNotFound)
	ErrSurveyClosed     = fmt.Errorf("%w: survey is closed", ErrValidation)
	ErrAlreadyResponded = fmt.Errorf("%w: survey already answered", ErrConflict)

	ErrTutorNotFound     = fmt.Errorf("%w: tutor not found", ErrNotFound)
	ErrTutorInactive     = fmt.Errorf("%w: tutor is not accepting sessions", ErrValidation)
	ErrSessionNotFound   = fmt.Errorf("%w: tutoring session not found", ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)

	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", ErrNotFound)
	ErrActivityNotFound     = fmt.Errorf("%w: activity not found", ErrNotFound)
	ErrActivityReadOnly     = fmt.Errorf("%w: only manual activities can be modified", ErrForbidden)
)

// Validationf builds a validation error with a descriptive message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
