// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// `loader.go` calls `validateStruct` immediately after it unmarshals the
// merged Koanf tree, so the binary never runs with partial or malformed
// configuration.  The rules in play are `required` on the listen address
// and source URL, `url` on the source URL, and `oneof` on the auth method.
package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
