package text

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

const tsvSeparator = '\t'

// tsvTokenizer splits tab separated lines. TSV has no quoting: tabs, line
// breaks and the escape character itself are written as escape sequences
// (\t, \n, \r, \\). With line joining enabled, a line ending in the escape
// character continues on the next line.
type tsvTokenizer struct {
	lr  *lineReader
	s   TSV
	lim limits
}

func newTSVTokenizer(r io.Reader, s TSV, lim limits) *tsvTokenizer {
	return &tsvTokenizer{lr: newLineReader(r), s: s, lim: lim}
}

func (t *tsvTokenizer) next() (row, error) {
	for {
		line, err := t.lr.readLine()
		if err != nil {
			return row{}, err
		}
		start := t.lr.line
		if isComment(line, t.s.Comment) {
			continue
		}
		if t.s.LineJoiningEnabled {
			for t.s.EscapeChar != 0 && endsWithEscape(line, rune(t.s.EscapeChar)) {
				more, err := t.lr.readLine()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return row{}, err
				}
				line = line[:len(line)-utf8.RuneLen(rune(t.s.EscapeChar))] + "\n" + more
			}
		}
		if line == "" {
			return row{cells: []cell{{}}, blank: true, line: start}, nil
		}
		cells, err := t.split(line, start)
		if err != nil {
			return row{}, err
		}
		return row{cells: cells, line: start}, nil
	}
}

// endsWithEscape reports whether line ends with an unescaped escape character.
func endsWithEscape(line string, esc rune) bool {
	n := 0
	for len(line) > 0 {
		r, size := utf8.DecodeLastRuneInString(line)
		if r != esc {
			break
		}
		n++
		line = line[:len(line)-size]
	}
	return n%2 == 1
}

func (t *tsvTokenizer) split(line string, lineNr int) ([]cell, error) {
	esc := rune(t.s.EscapeChar)
	tab := rune(t.s.EscapedTabChar)

	var cells []cell
	var sb strings.Builder
	chars := 0
	flush := func() error {
		cells = append(cells, cell{value: sb.String()})
		sb.Reset()
		chars = 0
		return t.lim.checkCells(lineNr, len(cells))
	}
	add := func(r rune) error {
		sb.WriteRune(r)
		chars++
		if t.lim.tooLong(chars) {
			return t.lim.columnError(lineNr, len(cells)+1)
		}
		return nil
	}

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		switch {
		case r == tsvSeparator:
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		case esc != 0 && r == esc && i < len(line):
			n, nsize := utf8.DecodeRuneInString(line[i:])
			switch {
			case tab != 0 && n == tab:
				r = '\t'
			case n == 'n':
				r = '\n'
			case n == 'r':
				r = '\r'
			case n == esc:
				r = esc
			default:
				// Unknown escape: keep the escape character.
				if err := add(r); err != nil {
					return nil, err
				}
				continue
			}
			i += nsize
		}
		if err := add(r); err != nil {
			return nil, err
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cells, nil
}
