// Package mapping decides which logical table a blob belongs to.
//
// A Mapper inspects the slash separated path of a blob and either names a
// table or reports that the blob is not part of any table. A non-match is
// never an error: it is how a reader ignores files it does not understand.
//
// Three strategies are provided:
//
//   - Regex: a named capture group of a regular expression, searched in the path.
//   - Directory: the ancestor directory a fixed number of levels above the blob.
//   - Glob: a fixed table for every path matching a glob expression.
package mapping
