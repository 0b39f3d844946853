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

// Package pagetree collects the page tree of a PDF file from a sequential
// scan and flattens it into the list of pages.
//
// Entries are added in the order they are found in the file, so a node may
// be known before or after its children.  Nothing is checked until
// [Tables.Flatten] is called at the end of the scan.
package pagetree

import (
	"seehuhn.de/go/geom/rect"
)

// Tables holds everything a scan has learned about the page tree.
//
// Later writes for the same reference replace earlier ones.  This matches
// the way incremental updates append new versions of objects to the end of
// a PDF file.
type Tables struct {
	// Boxes maps page objects to their own /MediaBox.
	Boxes map[Reference]rect.Rect

	// Bare contains the page objects which have no /MediaBox entry of their
	// own.  Such pages are only counted if they are reachable from the root.
	Bare map[Reference]bool

	// Kids maps page tree nodes to their children, in page order.
	Kids map[Reference][]Reference

	// Parent maps objects to their parent page tree node.
	Parent map[Reference]Reference

	// Scale maps objects to their /UserUnit value.
	Scale map[Reference]float64

	// Inherited maps page tree nodes to the /MediaBox they pass on to
	// their descendants.
	Inherited map[Reference]rect.Rect
}

// NewTables allocates empty tables.
func NewTables() *Tables {
	return &Tables{
		Boxes:     make(map[Reference]rect.Rect),
		Bare:      make(map[Reference]bool),
		Kids:      make(map[Reference][]Reference),
		Parent:    make(map[Reference]Reference),
		Scale:     make(map[Reference]float64),
		Inherited: make(map[Reference]rect.Rect),
	}
}

// AddPage records a page object together with its media box.
func (t *Tables) AddPage(ref Reference, box rect.Rect) {
	t.Boxes[ref] = box
	delete(t.Bare, ref)
}

// AddBarePage records a page object which has no media box of its own.
// If an earlier version of the page had a media box, this box is kept.
func (t *Tables) AddBarePage(ref Reference) {
	if _, hasBox := t.Boxes[ref]; hasBox {
		return
	}
	t.Bare[ref] = true
}

// AddContainer records a page tree node and its children.
// The slice is copied.
func (t *Tables) AddContainer(ref Reference, kids []Reference) {
	t.Kids[ref] = append([]Reference(nil), kids...)
}

// SetInherited records the media box of a page tree node.
func (t *Tables) SetInherited(ref Reference, box rect.Rect) {
	t.Inherited[ref] = box
}

// SetParent records that parent is the parent node of child.
func (t *Tables) SetParent(child, parent Reference) {
	t.Parent[child] = parent
}

// SetScale records the user space unit of an object.
func (t *Tables) SetScale(ref Reference, userUnit float64) {
	t.Scale[ref] = userUnit
}

// NumPages returns the number of page objects seen so far, including pages
// without a media box.
func (t *Tables) NumPages() int {
	return len(t.Boxes) + len(t.Bare)
}

func (t *Tables) isPage(ref Reference) bool {
	_, hasBox := t.Boxes[ref]
	return hasBox || t.Bare[ref]
}
