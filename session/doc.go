// Package session composes the credential store, the expiry scheduler, the
// single-flight refresh coordinator and the HTTP interceptor into the
// facade an application signs in, signs out and sends requests through.
//
// Every credential change, whatever its origin, flows through one store
// observer that updates the state, persists or clears the session marker
// and re-arms the refresh timer.
package session
