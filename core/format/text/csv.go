package text

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// csvTokenizer reads RFC 4180 style rows with configurable delimiter,
// quote and quote escape. Quoted fields may span lines.
type csvTokenizer struct {
	r        *bufio.Reader
	s        CSV
	lim      limits
	line     int
}

func newCSVTokenizer(r io.Reader, s CSV, lim limits) *csvTokenizer {
	return &csvTokenizer{r: bufio.NewReader(r), s: s, lim: lim}
}

func (t *csvTokenizer) read() (rune, bool, error) {
	c, _, err := t.r.ReadRune()
	if errors.Is(err, io.EOF) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c, false, nil
}

func (t *csvTokenizer) peek() (rune, bool) {
	c, _, err := t.r.ReadRune()
	if err != nil {
		return 0, false
	}
	_ = t.r.UnreadRune()
	return c, true
}

// endOfLine consumes the \n following a \r, if any.
func (t *csvTokenizer) endOfLine(c rune) {
	if c == '\r' {
		if n, ok := t.peek(); ok && n == '\n' {
			_, _, _ = t.r.ReadRune()
		}
	}
}

func (t *csvTokenizer) skipLine() error {
	for {
		c, eof, err := t.read()
		if err != nil {
			return err
		}
		if eof {
			return nil
		}
		if c == '\n' || c == '\r' {
			t.endOfLine(c)
			return nil
		}
	}
}

func (t *csvTokenizer) next() (row, error) {
	for {
		c, eof, err := t.read()
		if err != nil {
			return row{}, err
		}
		if eof {
			return row{}, io.EOF
		}
		t.line++
		start := t.line
		if t.s.Comment != 0 && c == rune(t.s.Comment) {
			if err := t.skipLine(); err != nil {
				return row{}, err
			}
			continue
		}
		if c == '\n' || c == '\r' {
			t.endOfLine(c)
			return row{cells: []cell{{}}, blank: true, line: start}, nil
		}
		_ = t.r.UnreadRune()
		cells, err := t.readRow()
		if err != nil {
			return row{}, err
		}
		return row{cells: cells, line: start}, nil
	}
}

func (t *csvTokenizer) readRow() ([]cell, error) {
	var cells []cell
	for {
		cl, last, err := t.readField(len(cells) + 1)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cl)
		if err := t.lim.checkCells(t.line, len(cells)); err != nil {
			return nil, err
		}
		if last {
			return cells, nil
		}
	}
}

// readField reads one field and reports whether it ended the row.
func (t *csvTokenizer) readField(column int) (cell, bool, error) {
	var sb strings.Builder
	chars := 0
	add := func(c rune) error {
		sb.WriteRune(c)
		chars++
		if t.lim.tooLong(chars) {
			return t.lim.columnError(t.line, column)
		}
		return nil
	}
	delim := rune(t.s.Delimiter)
	quote := rune(t.s.Quote)
	esc := rune(t.s.QuoteEscape)

	// Whitespace before an opening quote is ignored.
	var lead []rune
	for {
		c, eof, err := t.read()
		if err != nil {
			return cell{}, false, err
		}
		if eof {
			return cell{value: string(lead)}, true, nil
		}
		if c == delim {
			return cell{value: string(lead)}, false, nil
		}
		if c == '\n' || c == '\r' {
			t.endOfLine(c)
			return cell{value: string(lead)}, true, nil
		}
		if c != '\t' && unicode.IsSpace(c) {
			lead = append(lead, c)
			continue
		}
		if quote != 0 && c == quote {
			return t.readQuoted(column, &sb, add)
		}
		for _, l := range lead {
			if err := add(l); err != nil {
				return cell{}, false, err
			}
		}
		if err := add(c); err != nil {
			return cell{}, false, err
		}
		break
	}

	for {
		c, eof, err := t.read()
		if err != nil {
			return cell{}, false, err
		}
		if eof {
			return cell{value: sb.String()}, true, nil
		}
		switch {
		case c == delim:
			return cell{value: sb.String()}, false, nil
		case c == '\n' || c == '\r':
			t.endOfLine(c)
			return cell{value: sb.String()}, true, nil
		case esc != 0 && esc != quote && c == esc:
			// An escaped quote in an unquoted value is kept literally.
			if n, ok := t.peek(); ok && n == quote {
				_, _, _ = t.r.ReadRune()
				c = n
			}
		}
		if err := add(c); err != nil {
			return cell{}, false, err
		}
	}
}

func (t *csvTokenizer) readQuoted(column int, sb *strings.Builder, add func(rune) error) (cell, bool, error) {
	delim := rune(t.s.Delimiter)
	quote := rune(t.s.Quote)
	esc := rune(t.s.QuoteEscape)
	for {
		c, eof, err := t.read()
		if err != nil {
			return cell{}, false, err
		}
		if eof {
			return cell{}, false, &ParseError{Blob: t.lim.blob, Line: t.line, Column: column, Err: ErrUnterminatedQuote}
		}
		if c == '\n' {
			t.line++
		}
		if esc != 0 && esc != quote && c == esc {
			if n, ok := t.peek(); ok && (n == quote || n == esc) {
				_, _, _ = t.r.ReadRune()
				c = n
			}
			if err := add(c); err != nil {
				return cell{}, false, err
			}
			continue
		}
		if c != quote {
			if err := add(c); err != nil {
				return cell{}, false, err
			}
			continue
		}
		// c is a quote: either an escaped quote or the closing quote.
		if esc == quote {
			if n, ok := t.peek(); ok && n == quote {
				_, _, _ = t.r.ReadRune()
				if err := add(quote); err != nil {
					return cell{}, false, err
				}
				continue
			}
		}
		break
	}

	// After the closing quote: whitespace is ignored and any other
	// characters are appended up to the delimiter.
	for {
		c, eof, err := t.read()
		if err != nil {
			return cell{}, false, err
		}
		if eof {
			return cell{value: sb.String(), quoted: true}, true, nil
		}
		switch {
		case c == delim:
			return cell{value: sb.String(), quoted: true}, false, nil
		case c == '\n' || c == '\r':
			t.endOfLine(c)
			return cell{value: sb.String(), quoted: true}, true, nil
		case unicode.IsSpace(c):
			continue
		}
		if err := add(c); err != nil {
			return cell{}, false, err
		}
	}
}
