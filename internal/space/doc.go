// Package space provides the static spatial model of the café.
//
// A café is divided into Zones (named regions sharing noise, lighting and
// activity attributes), each containing Seats with fixed coordinates. The
// catalog is loaded once at startup from YAML and validated; a seat that
// references an unknown zone is a configuration error and the process
// refuses to start.
//
// # Thread Safety
//
// Registry is immutable after NewRegistry returns and is safe for
// concurrent use without locking.
package space
