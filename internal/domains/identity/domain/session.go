package domain

import (
	"errors"
	"strings"
	"time"
)

// Role grants access levels to authenticated callers.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

var (
	ErrMissingToken  = errors.New("token is required")
	ErrMissingUserID = errors.New("user id is required")
	ErrInvalidRole   = errors.New("role must be CUSTOMER or ADMIN")
)

// ParseRole normalizes a role name. Blank defaults to CUSTOMER.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// Principal is the resolved identity of a request.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Session binds a bearer token to a principal. A nil ExpiresAt never expires.
type Session struct {
	Token     string
	UserID    string
	Role      Role
	ExpiresAt *time.Time
}

// NewSession validates and builds a session.
func NewSession(token, userID string, role Role, expiresAt *time.Time) (*Session, error) {
	s := &Session{
		Token:     strings.TrimSpace(token),
		UserID:    strings.TrimSpace(userID),
		Role:      role,
		ExpiresAt: expiresAt,
	}
	if s.Token == "" {
		return nil, ErrMissingToken
	}
	if s.UserID == "" {
		return nil, ErrMissingUserID
	}
	if s.Role != RoleCustomer && s.Role != RoleAdmin {
		return nil, ErrInvalidRole
	}
	return s, nil
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

func (s Session) Principal() Principal {
	return Principal{UserID: s.UserID, Role: s.Role}
}
