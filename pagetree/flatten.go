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
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"seehuhn.de/go/geom/rect"
)

// Root returns the root node of the page tree, i.e. the only page tree node
// which is not listed as a child of another node.
func (t *Tables) Root() (Reference, error) {
	isKid := make(map[Reference]bool)
	for _, kids := range t.Kids {
		for _, kid := range kids {
			isKid[kid] = true
		}
	}

	var roots []Reference
	for ref := range t.Kids {
		if !isKid[ref] {
			roots = append(roots, ref)
		}
	}

	switch len(roots) {
	case 0:
		return 0, ErrNoRoot
	case 1:
		return roots[0], nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrMultipleRoots, refList(roots))
	}
}

// Flatten returns the pages of the document, in page order.
//
// The tree is traversed depth first, starting from the root returned by
// [Tables.Root].  Every child which is not itself a page tree node must be
// a known page object, and every page object with a media box must be
// reached exactly once.  Page objects without a media box which are not
// part of the tree are ignored.
func (t *Tables) Flatten() ([]Reference, error) {
	root, err := t.Root()
	if err != nil {
		return nil, err
	}

	var res, dangling []Reference
	bareSeen := make(map[Reference]bool)
	todo := []Reference{root}
	seen := map[Reference]bool{
		root: true,
	}
	for len(todo) > 0 {
		k := len(todo) - 1
		ref := todo[k]
		todo = todo[:k]

		kids, isNode := t.Kids[ref]
		if !isNode {
			if t.isPage(ref) {
				res = append(res, ref)
				if t.Bare[ref] {
					bareSeen[ref] = true
				}
			} else {
				dangling = append(dangling, ref)
			}
			continue
		}

		for i := len(kids) - 1; i >= 0; i-- {
			kid := kids[i]
			if _, kidIsNode := t.Kids[kid]; kidIsNode {
				if seen[kid] {
					return nil, fmt.Errorf("%w: %s", ErrCycle, kid)
				}
				seen[kid] = true
			}
			todo = append(todo, kid)
		}
	}

	if len(dangling) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDanglingPage, refList(dangling))
	}
	numPages := len(t.Boxes) + len(bareSeen)
	if len(res) != numPages {
		return nil, fmt.Errorf("%w: %d pages in the tree, %d page objects in the file",
			ErrPageCount, len(res), numPages)
	}
	return res, nil
}

// UserUnit returns the combined user space unit for the object ref.
// The /UserUnit values of ref and of all its ancestors are multiplied.
// Objects without a /UserUnit entry count as 1.
func (t *Tables) UserUnit(ref Reference) (float64, error) {
	start := ref
	unit := 1.0
	for steps := 0; ; steps++ {
		if steps > len(t.Parent) {
			return 0, fmt.Errorf("%w: parent chain of %s", ErrCycle, start)
		}
		if s, ok := t.Scale[ref]; ok {
			unit *= s
		}
		parent, ok := t.Parent[ref]
		if !ok {
			return unit, nil
		}
		ref = parent
	}
}

// MediaBox returns the media box of the page ref.  If the page has no media
// box of its own, the box of the closest ancestor which has one is used.
func (t *Tables) MediaBox(ref Reference) (rect.Rect, error) {
	if box, ok := t.Boxes[ref]; ok {
		return box, nil
	}

	start := ref
	for steps := 0; ; steps++ {
		if steps > len(t.Parent) {
			return rect.Rect{}, fmt.Errorf("%w: parent chain of %s", ErrCycle, start)
		}
		parent, ok := t.Parent[ref]
		if !ok {
			return rect.Rect{}, fmt.Errorf("%w: %s", ErrMissingBox, start)
		}
		if box, ok := t.Inherited[parent]; ok {
			return box, nil
		}
		ref = parent
	}
}

// refList formats a list of references for use in error messages.
// At most five references are shown.
func refList(refs []Reference) string {
	refs = slices.Clone(refs)
	slices.Sort(refs)

	const maxShown = 5
	var parts []string
	for i, ref := range refs {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("and %d more", len(refs)-maxShown))
			break
		}
		parts = append(parts, ref.String())
	}
	return strings.Join(parts, ", ")
}

var (
	ErrNoRoot        = errors.New("page tree has no root")
	ErrMultipleRoots = errors.New("page tree has more than one root")
	ErrCycle         = errors.New("page tree node reached twice")
	ErrDanglingPage  = errors.New("page tree refers to unknown pages")
	ErrPageCount     = errors.New("page count mismatch")
	ErrMissingBox    = errors.New("page has no media box")
)
