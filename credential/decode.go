package credential

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/authsession/schema"
	"golang.org/x/oauth2"
)

// Decode builds an oauth2.Token from a self-describing access token,
// reading its exp claim without verifying the signature. A payload that
// cannot be parsed yields the token without expiry and an error wrapping
// schema.ErrValidationFailure; callers decide whether that is fatal.
// A well-formed payload without exp is not an error.
func Decode(accessToken string) (*oauth2.Token, error) {
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return token, fmt.Errorf("%w: %v", schema.ErrValidationFailure, err)
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return token, fmt.Errorf("%w: %v", schema.ErrValidationFailure, err)
	}
	if expiry != nil {
		token.Expiry = expiry.Time.UTC()
	}
	return token, nil
}
