// Package utils provides common utility functions for the source resolver.
// It includes loose type conversions used when rendering record values and
// reading query parameters.
package utils
