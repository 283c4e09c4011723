// Package marker persists the "authenticated" hint consumed by route guards.
package marker
