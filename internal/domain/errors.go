package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrAuth                 = errors.New("invalid client ID")
	ErrCollaborator         = errors.New("collaborator failure")
	ErrClientNotFound       = errors.New("client not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrOnboardingIncomplete = errors.New("onboarding requirements not met")
	ErrEmptyContent         = errors.New("empty content")
)

// ValidationError reports missing or malformed user input. Nothing has been
// sent to any collaborator when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AuthError reports a failed credential check
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return ErrAuth.Error()
	}
	return e.Reason
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// CollaboratorError wraps a failure of an external collaborator such as the
// text-generation API or document storage.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}

// AnalysisFailedError aborts a whole analysis invocation. Section names the
// first section, in template order, whose call failed or came back empty.
type AnalysisFailedError struct {
	Section string
	Err     error
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("failed to generate legal analysis for %s: %v", e.Section, e.Err)
}

func (e *AnalysisFailedError) Unwrap() error {
	return e.Err
}

func (e *AnalysisFailedError) Is(target error) bool {
	return target == ErrCollaborator
}

// OnboardingIncompleteError refuses completion and carries the evaluated
// progress so callers can show what is missing.
type OnboardingIncompleteError struct {
	Progress OnboardingProgress
}

func (e *OnboardingIncompleteError) Error() string {
	return ErrOnboardingIncomplete.Error()
}

func (e *OnboardingIncompleteError) Is(target error) bool {
	return target == ErrOnboardingIncomplete
}
