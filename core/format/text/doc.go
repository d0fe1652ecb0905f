// Package text implements the delimited and fixed-width text formats: CSV,
// TSV and FWF.
//
// All three share one reading pipeline. A tokenizer splits the byte stream
// into rows of cells; the pipeline then applies the common settings (rows
// to skip, empty lines, header handling, whitespace trimming, null and
// empty value substitution, safety limits and the record limit) and emits
// records of nullable strings.
//
// Schema inference reads only the first row. When a header is present it
// is consumed exactly once: at inference time to name the fields and at
// read time to be skipped.
//
// Safety-limit violations are reported when iterating, as a *ParseError
// wrapping ErrTooManyColumns or ErrColumnTooLong.
package text
