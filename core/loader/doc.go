// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which reports whether it is enabled
// and registers its routes.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registered features. Register adds one; LoadAll loads the
// enabled ones in registration order.
package loader
