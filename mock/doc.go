// Package mock provides a reference credential issuer used by tests and by
// the issuer command.
//
// Access tokens are HS256 JWTs carrying an exp claim. The refresh
// credential is an http-only cookie that rotates on every refresh; a
// rotated cookie presented again revokes every session descending from
// the same login, which is what concurrent uncoordinated refreshes would
// trigger.
package mock
