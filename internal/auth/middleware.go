package auth

import (
	"errors"
	"log/slog"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"sakubijak/internal/log"
)

var errTokenRevoked = errors.New("token revoked")

// Authenticator resolves the requester from an "Authorization: Bearer"
// header. It never rejects a request: a missing or invalid token leaves the
// request without a requester and records the reason under ErrorContextKey.
type Authenticator struct {
	codec  *TokenCodec
	store  TokenStore
	logger *slog.Logger
}

// NewAuthenticator creates an authenticator. store may be nil when token
// revocation is not in use.
func NewAuthenticator(codec *TokenCodec, store TokenStore, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{codec: codec, store: store, logger: logger}
}

// Middleware returns the echo middleware resolving the requester.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             requesterContextKey,
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContinueOnIgnoredError: true,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			requester, err := a.Authenticate(c, token)
			if err != nil {
				return nil, err
			}
			return requester, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			reason := failureReason(err)
			c.Set(ErrorContextKey, reason)
			a.logger.Debug("request carries no identity",
				log.FieldComponent, log.ComponentAuth,
				log.FieldPath, c.Path(),
				"reason", reason,
			)
			return nil
		},
	})
}

// Authenticate verifies a raw token and returns the requester it names.
func (a *Authenticator) Authenticate(c echo.Context, token string) (Requester, error) {
	claims, err := a.codec.Verify(token)
	if err != nil {
		return Requester{}, err
	}
	if a.store != nil && a.store.IsAccessTokenRevoked(c.Request().Context(), claims.ID) {
		return Requester{}, errTokenRevoked
	}
	return newRequester(claims), nil
}

func failureReason(err error) string {
	var extractErr *echojwt.TokenExtractionError
	switch {
	case errors.As(err, &extractErr), errors.Is(err, echojwt.ErrJWTMissing):
		return "missing bearer token"
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrTokenBadSignature):
		return "token signature invalid"
	case errors.Is(err, errTokenRevoked):
		return "token revoked"
	case errors.Is(err, ErrTokenMalformed):
		return "token malformed"
	default:
		return "invalid token: " + err.Error()
	}
}
