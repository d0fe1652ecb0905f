package text

import (
	"io"
	"strings"
)

// fwfTokenizer slices each line into the declared column ranges. Ranges
// are counted in characters; a line shorter than a column yields the part
// that exists, or an empty cell.
type fwfTokenizer struct {
	lr  *lineReader
	s   FWF
	lim limits
}

func newFWFTokenizer(r io.Reader, s FWF, lim limits) *fwfTokenizer {
	return &fwfTokenizer{lr: newLineReader(r), s: s, lim: lim}
}

func (t *fwfTokenizer) next() (row, error) {
	for {
		line, err := t.lr.readLine()
		if err != nil {
			return row{}, err
		}
		start := t.lr.line
		if isComment(line, t.s.Comment) {
			continue
		}
		if line == "" {
			return row{cells: []cell{{}}, blank: true, line: start}, nil
		}
		if err := t.lim.checkCells(start, len(t.s.Columns)); err != nil {
			return row{}, err
		}
		runes := []rune(line)
		cells := make([]cell, len(t.s.Columns))
		for i, c := range t.s.Columns {
			v := slice(runes, c.Start, c.End)
			if !t.s.KeepPadding && t.s.Padding != 0 {
				v = strings.Trim(v, string(rune(t.s.Padding)))
			}
			if t.lim.tooLong(len([]rune(v))) {
				return row{}, t.lim.columnError(start, i+1)
			}
			cells[i] = cell{value: v}
		}
		return row{cells: cells, line: start}, nil
	}
}

func slice(runes []rune, start, end int) string {
	if start >= len(runes) {
		return ""
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
