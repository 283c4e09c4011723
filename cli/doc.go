// Package cli implements the authsession and issuer commands.
package cli
