// Package loader registers HTTP features on the Fiber app.
//
// A Feature owns its routes and decides whether it is enabled:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager loads enabled features in registration order and stops at the first error.
package loader
