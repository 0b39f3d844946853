// seehuhn.de/go/pagesize - read page sizes from large PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package sequential finds structural markers in a PDF file by reading
// the file once from start to end.
//
// No attempt is made to parse the file properly.  Instead, the input is
// searched for the regular expressions in [Patterns], and the markers are
// reported in the order they appear in the file.  Stream data is skipped,
// so that binary data which happens to look like a marker is ignored.
// This works on files with a damaged or missing cross-reference table, and
// memory use does not depend on the size of the file.
package sequential

import (
	"io"
)

// A Match is one marker found in the input.
type Match struct {
	Kind Kind

	// Pos is the position of the first byte of the marker in the input.
	Pos int64

	// Sub contains the text of the parenthesized subexpressions of the
	// pattern, see the comments for the Kind constants.
	Sub []string
}

// Scanner reports the markers from [Patterns] in the order they appear in
// the input.
type Scanner struct {
	buf      *Buffer
	pos      int // current position within buf
	inStream bool

	// next caches, for every pattern, the first match at or after the
	// position where the pattern was last searched.  A nil loc means that
	// there was no match.
	next [numKinds]struct {
		valid bool
		loc   []int
	}
}

// NewScanner returns a scanner which reads r in chunks of chunkSize bytes.
// The chunk size must be larger than any marker, except for /Kids arrays.
func NewScanner(r io.Reader, chunkSize int) *Scanner {
	return &Scanner{
		buf: NewBuffer(r, chunkSize),
	}
}

// Next returns the next marker.  At the end of input, io.EOF is returned.
//
// While the scanner is inside stream data, only [KindEndStream] markers are
// reported.  Markers of kind [KindStream] and [KindEndStream] are reported
// to the caller, but need no action there.
func (s *Scanner) Next() (*Match, error) {
	for {
		kind, loc := s.leftmost()

		// A match which touches the end of the buffer may continue in
		// the next chunk.
		if loc != nil && (loc[1] < s.buf.Len() || s.buf.EOF()) {
			return s.take(kind, loc), nil
		}
		if s.buf.EOF() {
			return nil, io.EOF
		}

		s.buf.Trim(s.pos, s.inStream)
		s.pos = 0
		s.forget()
		err := s.buf.Fill()
		if err != nil {
			return nil, err
		}
	}
}

// InStream reports whether the scanner is inside stream data.
func (s *Scanner) InStream() bool {
	return s.inStream
}

// Buffer gives access to the scanner's input buffer.
func (s *Scanner) Buffer() *Buffer {
	return s.buf
}

// leftmost returns the eligible pattern with the earliest match at or after
// the current position.  If no pattern matches, loc is nil.
func (s *Scanner) leftmost() (Kind, []int) {
	best := Kind(-1)
	var bestLoc []int
	for i := range Patterns {
		p := &Patterns[i]
		if s.inStream && p.Kind != KindEndStream {
			continue
		}

		c := &s.next[i]
		if !c.valid || c.loc != nil && c.loc[0] < s.pos {
			c.loc = s.search(p, s.pos)
			c.valid = true
		}
		if c.loc != nil && (bestLoc == nil || c.loc[0] < bestLoc[0]) {
			best = p.Kind
			bestLoc = c.loc
		}
	}
	return best, bestLoc
}

// search finds the first match of p at or after position from in the
// buffer.  The returned slice holds positions relative to the start of the
// buffer, in the format of regexp.FindSubmatchIndex.
func (s *Scanner) search(p *Pattern, from int) []int {
	data := s.buf.Bytes()
	for from < len(data) {
		loc := p.Re.FindSubmatchIndex(data[from:])
		if loc == nil {
			return nil
		}
		start := from + loc[0]
		if p.WordStart && isWordByte(s.buf.before(start)) {
			from = start + 1
			continue
		}
		for i, x := range loc {
			if x >= 0 {
				loc[i] = x + from
			}
		}
		return loc
	}
	return nil
}

// take consumes the match and updates the stream state.
func (s *Scanner) take(kind Kind, loc []int) *Match {
	data := s.buf.Bytes()
	m := &Match{
		Kind: kind,
		Pos:  s.buf.Offset() + int64(loc[0]),
		Sub:  make([]string, len(loc)/2-1),
	}
	for i := range m.Sub {
		a, b := loc[2*i+2], loc[2*i+3]
		if a >= 0 && b > a {
			m.Sub[i] = string(data[a:b])
		}
	}
	s.pos = loc[1]

	switch kind {
	case KindStream:
		s.inStream = true
	case KindEndStream:
		// Positions found before the stream may point into stream data.
		s.inStream = false
		s.forget()
	}
	return m
}

// forget discards all cached match positions.
func (s *Scanner) forget() {
	for i := range s.next {
		s.next[i].valid = false
		s.next[i].loc = nil
	}
}
