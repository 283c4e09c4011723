// Package issuer implements the client side of the credential-issuing
// endpoint: register, login, refresh, logout and profile.
//
// The refresh credential never passes through this package; it travels as
// an HttpOnly cookie held by the client's cookie jar.
package issuer
