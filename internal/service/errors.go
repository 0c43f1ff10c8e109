package service

import (
	"errors"
	"fmt"

	"github.com/maheshrc27/socialpro/internal/models"
)

var ErrPostNotFound = errors.New("post doesn't exist")

// ValidationError rejects input before any network or storage work happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CsrfValidationError means the callback state was absent, expired or did
// not match the one issued for the attempt.
type CsrfValidationError struct {
	Provider models.Provider
}

func (e *CsrfValidationError) Error() string {
	return fmt.Sprintf("%s: state validation failed", e.Provider)
}

type TokenExchangeError struct {
	Provider models.Provider
	Msg      string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed: %s", e.Provider, e.Msg)
}

type ProfileFetchError struct {
	Provider models.Provider
	Msg      string
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("%s profile fetch failed: %s", e.Provider, e.Msg)
}

type PublishError struct {
	Provider models.Provider
	Msg      string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s publish failed: %s", e.Provider, e.Msg)
}

// AuthorizationDeniedError carries the error the provider sent back on the
// redirect instead of a code.
type AuthorizationDeniedError struct {
	Provider models.Provider
	Msg      string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("%s authorization denied: %s", e.Provider, e.Msg)
}

type NotConnectedError struct {
	Provider models.Provider
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("%s is not connected", e.Provider)
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type ConnectStage string

const (
	StageValidating ConnectStage = "validating"
	StageExchanging ConnectStage = "exchanging"
	StagePersisting ConnectStage = "persisting"
)

// ConnectError reports the stage at which a connect flow failed.
type ConnectError struct {
	Provider models.Provider
	Stage    ConnectStage
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s failed while %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text shown on the dashboard notification.
func (e *ConnectError) Message() string {
	switch err := e.Err.(type) {
	case *TokenExchangeError:
		return err.Msg
	case *ProfileFetchError:
		return err.Msg
	case *AuthorizationDeniedError:
		return err.Msg
	case *CsrfValidationError:
		return "invalid or expired authorization state"
	case *StorageError:
		return "failed to save account"
	}
	return e.Err.Error()
}
