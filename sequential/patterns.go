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
	"regexp"
	"strconv"
)

// Kind identifies one of the markers recognised by the [Scanner].
// If two markers start at the same position, the one with the smaller
// Kind wins.
type Kind int

// These are the markers the scanner looks for.
const (
	KindObject    Kind = iota // "12 0 obj", Sub: number, generation
	KindDictOpen              // "<<"
	KindType                  // "/Type /Page", Sub: type name
	KindMediaBox              // "/MediaBox [0 0 612 792]", Sub: array contents
	KindDictClose             // ">>"
	KindStream                // "stream"
	KindEndStream             // "endstream"
	KindKids                  // "/Kids [3 0 R 4 0 R]", Sub: array contents
	KindParent                // "/Parent 2 0 R", Sub: number, generation
	KindUserUnit              // "/UserUnit 2.5", Sub: number

	numKinds
)

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return Patterns[k].Name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// A Pattern describes how to find one kind of marker in the input.
type Pattern struct {
	Kind Kind
	Name string
	Re   *regexp.Regexp

	// WordStart is set for patterns which must not directly follow a
	// letter, digit or underscore.  Go regular expressions cannot look
	// behind the start of the searched slice, so the scanner checks this
	// separately.
	WordStart bool
}

// Patterns lists all markers, indexed by Kind.
var Patterns = [numKinds]Pattern{
	{KindObject, "obj", regexp.MustCompile(`([0-9]+)` + ws + `+([0-9]+)` + ws + `+obj\b`), true},
	{KindDictOpen, "<<", regexp.MustCompile(`<<`), false},
	{KindType, "/Type", regexp.MustCompile(`/Type` + ws + `*/(` + nameChar + `+)`), false},
	{KindMediaBox, "/MediaBox", regexp.MustCompile(`/MediaBox` + ws + `*\[(` + numberList + `)\]`), false},
	{KindDictClose, ">>", regexp.MustCompile(`>>`), false},
	{KindStream, "stream", regexp.MustCompile(`stream\b`), true},
	{KindEndStream, "endstream", regexp.MustCompile(`endstream\b`), true},
	{KindKids, "/Kids", regexp.MustCompile(`/Kids` + ws + `*\[(` + refList + `)\]`), false},
	{KindParent, "/Parent", regexp.MustCompile(`/Parent` + ws + `+([0-9]+)` + ws + `+([0-9]+)` + ws + `+R`), false},
	{KindUserUnit, "/UserUnit", regexp.MustCompile(`/UserUnit` + ws + `*([-+.0-9]+)`), false},
}

var (
	// ws matches one PDF white-space character.
	ws = `[\x00\t\n\f\r ]`

	// nameChar matches a regular character inside a PDF name.
	nameChar = `[^\x00\t\n\f\r ()<>\[\]{}/%]`

	// numberList matches the contents of a numeric array, including
	// malformed numbers which are rejected later.
	numberList = `[-+.0-9\x00\t\n\f\r ]*`

	// refList matches the contents of an array of indirect references.
	refList = `[0-9R\x00\t\n\f\r ]*`

	// openKids matches a /Kids array which reaches the end of the buffer.
	// The closing bracket may be present, since a match which ends at the
	// end of the buffer is not used until more data has been read.
	openKids = regexp.MustCompile(`/Kids` + ws + `*\[` + refList + `\]?$`)
)

// isWordByte reports whether c is matched by `\w` in a regular expression.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
