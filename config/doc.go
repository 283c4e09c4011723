// Package config loads command options from configuration files and the
// environment.
package config
