package session

import (
	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/schema"
)

// State is a snapshot of the session as seen by the application.
type State struct {
	Credential    *credential.Credential
	User          *schema.Profile
	Authenticated bool
	Loading       bool
}

// Listener receives state snapshots in commit order. It runs on the
// goroutine that changed the state and must not call Login, Register,
// Logout or Start.
type Listener func(state State)

type listener struct {
	fn Listener
}
