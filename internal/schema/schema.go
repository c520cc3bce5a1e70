// Package schema provides the principal schematics for all other packages. It
// defines provider implementations wrapping the (Unix-based) operating system
// calls that the benchmark relies on, so that consuming packages can accept
// narrow interfaces and be tested against fakes.
package schema
