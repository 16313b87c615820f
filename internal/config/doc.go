// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation,
// which is how secrets (API tokens, SMTP password, database password) are supplied.
package config
