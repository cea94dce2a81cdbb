// Package placeholder translates the five DB-API parameter styles into
// PostgreSQL's native $N positional placeholders ahead of Parse, and
// produces the argument reordering needed to bind the caller's values to
// the positions the translated query actually uses.
package placeholder

// Style names one of the five supported parameter marker conventions.
type Style string

const (
	// Qmark uses a bare "?" for every parameter, in positional order.
	Qmark Style = "qmark"
	// Numeric uses ":1", ":2", ... — already positional, just reshaped.
	Numeric Style = "numeric"
	// Named uses ":name" markers, repeatable, bound from a name-keyed map.
	Named Style = "named"
	// Format uses "%s" for every parameter, in positional order.
	Format Style = "format"
	// Pyformat uses "%(name)s" markers, repeatable, bound from a name-keyed
	// map, or bare "%s" markers, which are positional like Format.
	Pyformat Style = "pyformat"
)
