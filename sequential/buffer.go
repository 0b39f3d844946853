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

package sequential

import (
	"io"

	"golang.org/x/exp/slices"
)

// A Buffer holds the part of the input which has been read but not yet
// fully scanned.
//
// The buffer grows by one chunk per call to [Buffer.Fill] and is cut back
// by [Buffer.Trim].  After Trim, at most one chunk of data is kept, so the
// buffer never holds more than two chunks.  The one exception is a /Kids
// array which is still open at the end of the buffer: such an array can be
// arbitrarily long, and all of it is kept until the closing bracket has been
// read.  While an array spans k chunks, the buffer may hold about k+1 chunks.
type Buffer struct {
	r         io.Reader
	chunkSize int

	data   []byte
	offset int64 // file position corresponding to data[0]
	prev   byte  // the last byte discarded by Trim
	eof    bool
	peak   int
}

// NewBuffer returns an empty buffer which reads from r in pieces of
// chunkSize bytes.
func NewBuffer(r io.Reader, chunkSize int) *Buffer {
	return &Buffer{
		r:         r,
		chunkSize: chunkSize,
	}
}

// Fill appends the next chunk of input to the buffer.
// Once the end of input has been reached, EOF returns true and Fill does
// nothing.  io.EOF is never returned.
func (b *Buffer) Fill() error {
	if b.eof {
		return nil
	}

	n := len(b.data)
	b.data = slices.Grow(b.data, b.chunkSize)
	k, err := io.ReadFull(b.r, b.data[n:n+b.chunkSize])
	b.data = b.data[:n+k]
	b.updatePeak()

	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		b.eof = true
		return nil
	default:
		return err
	}
}

// Trim discards the first consumed bytes of the buffer.
//
// If more than one chunk of data remains after this, only the last chunk is
// kept, unless the remaining data ends inside a /Kids array.  Callers set
// inStream while the end of the buffer is inside stream data, where /Kids
// arrays have no meaning.
func (b *Buffer) Trim(consumed int, inStream bool) {
	cut := consumed
	tail := b.data[consumed:]
	if len(tail) > b.chunkSize && (inStream || !openKids.Match(tail)) {
		cut += len(tail) - b.chunkSize
	}
	if cut == 0 {
		return
	}

	b.prev = b.data[cut-1]
	n := copy(b.data, b.data[cut:])
	b.data = b.data[:n]
	b.offset += int64(cut)
}

// Bytes returns the buffered data.  The slice is only valid until the next
// call to Fill or Trim.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Offset returns the position of Bytes()[0] in the input.
func (b *Buffer) Offset() int64 {
	return b.offset
}

// EOF reports whether the end of input has been reached.
// All remaining input is in the buffer when this is true.
func (b *Buffer) EOF() bool {
	return b.eof
}

// Peak returns the largest number of bytes held by the buffer so far.
func (b *Buffer) Peak() int {
	return b.peak
}

// before returns the input byte just before Bytes()[i].
// Zero, which is a PDF white-space character, is returned at the start of
// the input.
func (b *Buffer) before(i int) byte {
	if i > 0 {
		return b.data[i-1]
	}
	return b.prev
}

func (b *Buffer) updatePeak() {
	if len(b.data) > b.peak {
		b.peak = len(b.data)
	}
}
