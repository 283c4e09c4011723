// Package refresh implements the single-flight refresh coordinator.
//
// At most one remote refresh is outstanding at any time. Every caller
// arriving while it runs is queued and receives the same outcome, in
// arrival order, after the new credential has been committed to the
// store. A failed refresh clears the store and is not retried; a result
// arriving after the store moved to a new generation (logout, new login)
// is discarded.
package refresh
