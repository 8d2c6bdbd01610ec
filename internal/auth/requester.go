package auth

import (
	"time"

	"github.com/labstack/echo/v4"
)

const (
	requesterContextKey = "requester"
	// ErrorContextKey holds the diagnostic reason a token was rejected.
	ErrorContextKey = "auth_error"
)

// Requester is the authenticated subject of one request. It is created once
// by the authentication middleware and passed by value from then on.
type Requester struct {
	UserID    uint
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Has reports whether the requester holds permission p over its own rows.
// Every resolved identity holds the whole vocabulary.
func (r Requester) Has(p Permission) bool {
	return r.UserID != 0 && p.Valid()
}

func newRequester(claims *Claims) Requester {
	r := Requester{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		r.ExpiresAt = claims.ExpiresAt.Time
	}
	return r
}

// RequesterFrom returns the requester resolved for this request, if any.
func RequesterFrom(c echo.Context) (Requester, bool) {
	r, ok := c.Get(requesterContextKey).(Requester)
	if !ok || r.UserID == 0 {
		return Requester{}, false
	}
	return r, true
}

// WithRequester stores r on the echo context.
func WithRequester(c echo.Context, r Requester) {
	c.Set(requesterContextKey, r)
}

// FailureReason returns the recorded reason a presented token was rejected.
func FailureReason(c echo.Context) string {
	reason, _ := c.Get(ErrorContextKey).(string)
	return reason
}
