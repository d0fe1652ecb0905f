// Package attribute appends derived columns to the records of a table.
//
// An attribute is either a CONSTANT, the same value for every record, or a
// REGEX, a named capture group taken from the blob path. Values are coerced
// to the declared type; a failed coercion or a pattern that does not match
// yields nil rather than an error. Attribute fields are appended after the
// format fields, in declaration order.
package attribute
