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

package pagetree

import (
	"strconv"
)

// Reference identifies an indirect object in a PDF file.
// The lower 32 bits represent the object number, the next 16 bits the
// generation number.
type Reference uint64

// NewReference returns the reference for the given object and generation
// number.
func NewReference(number uint32, generation uint16) Reference {
	return Reference(uint64(number) | uint64(generation)<<32)
}

// ParseReference converts the decimal object and generation numbers found
// in a PDF file into a Reference.  An error is returned if either number
// is out of range.
func ParseReference(number, generation string) (Reference, error) {
	n, err := strconv.ParseUint(number, 10, 32)
	if err != nil {
		return 0, err
	}
	g, err := strconv.ParseUint(generation, 10, 16)
	if err != nil {
		return 0, err
	}
	return NewReference(uint32(n), uint16(g)), nil
}

func (x Reference) Number() uint32 {
	return uint32(x)
}

func (x Reference) Generation() uint16 {
	return uint16(x >> 32)
}

// String returns the reference in the form used inside PDF files,
// for example "12 0 R".
func (x Reference) String() string {
	return strconv.FormatUint(uint64(x.Number()), 10) + " " +
		strconv.FormatUint(uint64(x.Generation()), 10) + " R"
}
