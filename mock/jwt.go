package mock

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const versionClaim = "ver"

// createAccessToken signs a short-lived HS256 access token for u
func (s *Service) createAccessToken(u *user) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":        u.ID,
		"email":      u.Profile.Email,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(s.accessTTL).Unix(),
		versionClaim: s.version.Load(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// verifyAccessToken validates an Authorization header value and returns
// the token subject.
func (s *Service) verifyAccessToken(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", errAccessInvalid
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if _, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return "", errAccessInvalid
	}
	version, _ := claims[versionClaim].(float64)
	if int64(version) != s.version.Load() {
		return "", errAccessInvalid
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", errAccessInvalid
	}
	return subject, nil
}
