package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)

// AuthCode is the machine-readable rejection code returned on 401 responses.
type AuthCode string

const (
	AuthCodeTokenExpired AuthCode = "TOKEN_EXPIRED"
	AuthCodeTokenInvalid AuthCode = "INVALID_TOKEN"
	AuthCodeTokenRevoked AuthCode = "TOKEN_REVOKED"
)

// AuthError is a classified credential rejection. It is distinct from the
// anonymous path: an AuthError means a credential was presented and failed
// verification, and the caller must be told why.
type AuthError struct {
	Code   AuthCode
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth rejected (%s): %s", e.Code, e.Reason)
}

// Unwrap makes errors.Is(err, ErrUnauthorized) hold for every AuthError.
func (e *AuthError) Unwrap() error { return ErrUnauthorized }
