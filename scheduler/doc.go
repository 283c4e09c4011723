// Package scheduler renews a credential ahead of its expiry so requests
// rarely meet a 401. It keeps no refresh state of its own: duplicate
// triggers are collapsed by the refresh coordinator.
package scheduler
