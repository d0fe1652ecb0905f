package text

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// cell is one raw value of a row. quoted records whether the value was
// enclosed in quotes, which changes how empty values are substituted.
type cell struct {
	value  string
	quoted bool
}

// row is one logical row. blank is set for a line with no characters.
type row struct {
	cells []cell
	blank bool
	line  int
}

// tokenizer splits a stream into rows. It returns io.EOF once no more rows
// are available. Errors other than io.EOF are *ParseError or I/O errors.
type tokenizer interface {
	next() (row, error)
}

// limits carries the safety limits and the position used for errors.
type limits struct {
	blob       string
	maxColumns int
	maxChars   int
}

func (l limits) columnError(line, column int) error {
	return &ParseError{Blob: l.blob, Line: line, Column: column, Err: ErrColumnTooLong}
}

func (l limits) checkCells(line, n int) error {
	if l.maxColumns > 0 && n > l.maxColumns {
		return &ParseError{Blob: l.blob, Line: line, Column: n, Err: ErrTooManyColumns}
	}
	return nil
}

func (l limits) tooLong(chars int) bool {
	return l.maxChars > 0 && chars > l.maxChars
}

// lineReader reads lines without their terminator, accepting \n, \r\n
// and a final line without terminator.
type lineReader struct {
	r    *bufio.Reader
	line int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (lr *lineReader) readLine() (string, error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && s == "" {
		return "", io.EOF
	}
	lr.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

// isComment reports whether the line starts with the comment character.
func isComment(line string, comment Char) bool {
	return comment != 0 && strings.HasPrefix(line, string(rune(comment)))
}
