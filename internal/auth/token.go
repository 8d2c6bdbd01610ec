package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned once the current time reaches the token expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when the token cannot be decoded or lacks a subject.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenBadSignature is returned when the signature or algorithm does not match.
	ErrTokenBadSignature = errors.New("token signature invalid")
)

// Token audiences keep refresh tokens from being accepted as access tokens.
const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Claims represents JWT claims.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies identity tokens with a symmetric secret and
// one HMAC algorithm fixed at construction.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewTokenCodec creates a codec for algorithm HS256, HS384 or HS512.
func NewTokenCodec(secret, algorithm string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenCodec{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

// Issue signs an access token for userID that expires after ttl.
func (c *TokenCodec) Issue(userID uint, email string, ttl time.Duration) (string, *Claims, error) {
	return c.issue(audienceAccess, userID, email, ttl)
}

// IssueRefresh signs a refresh token. Refresh tokens are rejected by Verify.
func (c *TokenCodec) IssueRefresh(userID uint, email string, ttl time.Duration) (string, *Claims, error) {
	return c.issue(audienceRefresh, userID, email, ttl)
}

// Verify checks an access token and returns its claims.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	return c.verify(token, audienceAccess)
}

// VerifyRefresh checks a refresh token and returns its claims.
func (c *TokenCodec) VerifyRefresh(token string) (*Claims, error) {
	return c.verify(token, audienceRefresh)
}

func (c *TokenCodec) issue(audience string, userID uint, email string, ttl time.Duration) (string, *Claims, error) {
	now := c.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// verify checks the signature, algorithm, audience and expiry of token.
// Expiry wins over every other failure.
func (c *TokenCodec) verify(token, audience string) (*Claims, error) {
	parser := &jwt.Parser{}
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return c.secret, nil
	})

	// Claims are decoded even when validation fails, so expiry is checked
	// against our own clock before anything else.
	if claims.ExpiresAt != nil && !c.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || claims.UserID == 0 || !claims.VerifyAudience(audience, true) {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return ErrTokenMalformed
	}
	switch {
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return ErrTokenExpired
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return ErrTokenMalformed
	case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return ErrTokenBadSignature
	default:
		return ErrTokenMalformed
	}
}
