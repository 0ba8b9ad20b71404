// Package properties loads an INI-style properties file into an immutable
// in-memory snapshot and serves string lookups by section and key.
//
// Values are returned raw: no interpolation, no type coercion and no inline
// comment stripping. Option names are case-insensitive, section names are
// not, and keys declared under [DEFAULT] are visible from every section.
package properties
