package credential

import (
	"time"

	"github.com/viant/authsession/schema"
	"golang.org/x/oauth2"
)

// UserKey is the oauth2.Token extra key holding the *schema.Profile
// returned alongside an access token.
const UserKey = "user"

// Credential is a stored access token tagged with the store generation
// that committed it.
type Credential struct {
	Token      *oauth2.Token
	Generation uint64
}

// AccessToken returns the bearer token value
func (c *Credential) AccessToken() string {
	if c == nil || c.Token == nil {
		return ""
	}
	return c.Token.AccessToken
}

// Expiry returns the decoded expiry, zero when unknown
func (c *Credential) Expiry() time.Time {
	if c == nil || c.Token == nil {
		return time.Time{}
	}
	return c.Token.Expiry
}

// HasExpiry reports whether the token carried a usable exp claim
func (c *Credential) HasExpiry() bool {
	return !c.Expiry().IsZero()
}

// User returns the profile issued with the token, if any
func (c *Credential) User() *schema.Profile {
	if c == nil || c.Token == nil {
		return nil
	}
	user, _ := c.Token.Extra(UserKey).(*schema.Profile)
	return user
}

// WithUser attaches the issued profile to token
func WithUser(token *oauth2.Token, user *schema.Profile) *oauth2.Token {
	if token == nil || user == nil {
		return token
	}
	return token.WithExtra(map[string]interface{}{UserKey: user})
}
