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

package pagesize

import (
	"errors"
	"fmt"
	"strconv"

	"seehuhn.de/go/pagesize/pagetree"
)

// StructuralError indicates that the page tree found in a file is
// inconsistent.  No page sizes can be reported for such a file, since the
// page order cannot be trusted.
type StructuralError struct {
	Pos int64 // position in the file, or -1 if not known
	Err error
}

func (err *StructuralError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos >= 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "malformed page tree" + middle + tail
}

func (err *StructuralError) Unwrap() error {
	return err.Err
}

// MalformedAttributeError describes a /MediaBox or /UserUnit entry which
// could not be used.  These errors are not fatal: the entry is logged and
// ignored, and the scan continues.
type MalformedAttributeError struct {
	Pos   int64
	Ref   pagetree.Reference
	Attr  string // "MediaBox", "UserUnit" or "Kids"
	Value string
	Err   error
}

func (err *MalformedAttributeError) Error() string {
	head := ""
	if err.Ref != 0 {
		head = "object " + err.Ref.String() + ": "
	}
	return fmt.Sprintf("%sinvalid /%s %q (at byte %d): %v",
		head, err.Attr, err.Value, err.Pos, err.Err)
}

func (err *MalformedAttributeError) Unwrap() error {
	return err.Err
}

// UnsupportedUnitError is returned for unit names other than the ones
// listed in [ParseUnit].
type UnsupportedUnitError struct {
	Unit string
}

func (err *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("unsupported unit %q (use px, in, mm or cm)", err.Unit)
}

var (
	// ErrChunkSize is returned if the chunk size given in the options is
	// too small.
	ErrChunkSize = fmt.Errorf("chunk size must be at least %d bytes", MinChunkSize)

	errNegativeDepth = errors.New("unexpected \">>\"")
	errArity         = errors.New("expected four numbers")
	errNotPositive   = errors.New("value must be positive")
	errRefList       = errors.New("malformed list of references")
)
