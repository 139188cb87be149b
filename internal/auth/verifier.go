package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SigningAlgorithm is the only algorithm tokens may be signed with.
const SigningAlgorithm = "RS256"

var (
	ErrMissingHeader    = errors.New("no authentication header")
	ErrMalformedHeader  = errors.New("invalid authentication header")
	ErrInvalidSignature = errors.New("invalid token")
)

// JwtPayload is the decoded claim set of a bearer token. Only Subject is
// relied upon; it identifies the owner of todo items.
type JwtPayload struct {
	jwt.RegisteredClaims
}

// Verifier checks a raw token and returns its claims. Implementations wrap
// every failure in ErrInvalidSignature.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*JwtPayload, error)
}

// TokenFromHeader extracts the token from an Authorization header value of
// the form "Bearer <token>" (scheme matched case-insensitively).
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", ErrMalformedHeader
	}
	return strings.Split(header, " ")[1], nil
}

// VerifyHeader runs header extraction and token verification.
func VerifyHeader(ctx context.Context, v Verifier, header string) (*JwtPayload, error) {
	raw, err := TokenFromHeader(header)
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, raw)
}

// ParseUserID returns the subject claim of a token without verifying it.
// Callers sit behind the authorizer, which has already verified the token.
func ParseUserID(token string) (string, error) {
	var claims JwtPayload
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject claim")
	}
	return claims.Subject, nil
}

// CertVerifier verifies RS256 tokens against the keys held by a KeyRing.
type CertVerifier struct {
	keys   *KeyRing
	parser *jwt.Parser
}

func NewCertVerifier(keys *KeyRing) *CertVerifier {
	return &CertVerifier{
		keys:   keys,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{SigningAlgorithm})),
	}
}

// Verify accepts the token if any trusted key validates it. Several keys are
// trusted at once while a certificate is being rotated.
func (v *CertVerifier) Verify(_ context.Context, raw string) (*JwtPayload, error) {
	keys := v.keys.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no trusted keys loaded", ErrInvalidSignature)
	}
	var lastErr error
	for _, k := range keys {
		claims := &JwtPayload{}
		_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return k, nil
		})
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, lastErr)
}
