// Package credential holds the process-wide access credential of a
// session.
//
// The Store is the only mutable credential state: readers get the
// current value without blocking, writers replace it atomically and
// start a new generation. Refreshes capture the generation they started
// from and commit with SetIf, so a result that arrives after a logout or
// a new login is discarded instead of resurrecting the old session.
package credential
