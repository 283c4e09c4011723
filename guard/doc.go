// Package guard provides net/http middleware that sends visitors without a
// session marker to the login page and signed-in visitors away from it.
package guard
