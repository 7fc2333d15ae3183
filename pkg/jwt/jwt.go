package jwt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by backend session tokens.
type Claims struct {
	UserID SubjectID `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// HasSubject reports whether the token carries the backend's id claim.
// The standard sub claim alone does not identify a backend user.
func (c *Claims) HasSubject() bool {
	return c != nil && c.UserID != ""
}

// SubjectID is the backend's id claim. The API issues it either as a string
// or as a number; empty strings, zero, false and null mean no subject.
type SubjectID string

// String returns the id in its textual form.
func (s SubjectID) String() string {
	return string(s)
}

// UnmarshalJSON accepts any JSON scalar. Objects and arrays keep their raw
// compact encoding.
func (s *SubjectID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch x := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = SubjectID(x)
	case bool:
		if x {
			*s = "true"
		} else {
			*s = ""
		}
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return err
		}
		if f == 0 {
			*s = ""
		} else {
			*s = SubjectID(x.String())
		}
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*s = SubjectID(buf.String())
	}
	return nil
}

// Decode parses a token without verifying its signature.
func Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// Subject returns the id claim of token, or an empty string when the token
// cannot be decoded or carries no id.
func Subject(token string) string {
	claims, err := Decode(token)
	if err != nil || !claims.HasSubject() {
		return ""
	}
	return claims.UserID.String()
}

// ExpirationDays returns the number of whole days between now and the token's
// exp claim. Partial days are truncated toward zero, so an expired token
// yields zero or a negative count.
func ExpirationDays(token string, now time.Time) (int, error) {
	claims, err := Decode(token)
	if err != nil {
		return 0, err
	}
	if claims.ExpiresAt == nil {
		return 0, ErrMissingExpiration
	}
	return int(claims.ExpiresAt.Sub(now) / (24 * time.Hour)), nil
}
