// Package clock abstracts time for the session scheduler. Production code
// uses Real; tests use Fake and advance time explicitly.
package clock
