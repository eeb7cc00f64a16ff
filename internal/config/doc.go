// Package config provides configuration structures and utilities for
// domaindive. It defines the lookup timeouts, the analyzer selection, and
// report and history preferences, and loads overrides from a YAML file.
package config
