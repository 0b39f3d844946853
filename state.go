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
	"log/slog"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pagesize/pagetree"
	"seehuhn.de/go/pagesize/sequential"
)

// objectState collects the attributes of the object currently being
// scanned.  The pending values are handed to the page tree tables when the
// outermost dictionary of the object is closed.
type objectState struct {
	tree *pagetree.Tables
	log  *slog.Logger

	depth  int
	hasRef bool
	ref    pagetree.Reference
	tp     string
	box    *rect.Rect
	badBox bool // a /MediaBox entry was present but could not be used
	kids   []pagetree.Reference
}

func (st *objectState) apply(m *sequential.Match) error {
	switch m.Kind {
	case sequential.KindObject:
		if st.depth != 0 {
			st.log.Debug("object header inside dictionary",
				slog.Int64("pos", m.Pos), slog.Int("depth", st.depth))
			return nil
		}
		ref, err := pagetree.ParseReference(m.Sub[0], m.Sub[1])
		if err != nil {
			st.log.Debug("invalid object header",
				slog.Int64("pos", m.Pos), slog.Any("err", err))
			st.hasRef = false
			return nil
		}
		st.ref = ref
		st.hasRef = true

	case sequential.KindDictOpen:
		st.depth++

	case sequential.KindType:
		if st.depth == 1 {
			st.tp = m.Sub[0]
		}

	case sequential.KindMediaBox:
		box, err := parseBox(m.Sub[0])
		if err != nil {
			st.malformed(m, "MediaBox", err)
			st.box = nil
			st.badBox = true
			return nil
		}
		st.box = &box
		st.badBox = false

	case sequential.KindDictClose:
		st.depth--
		if st.depth < 0 {
			return &StructuralError{Pos: m.Pos, Err: errNegativeDepth}
		}
		if st.depth == 0 {
			st.finish()
		}

	case sequential.KindStream, sequential.KindEndStream:
		// stream data is skipped by the scanner

	case sequential.KindKids:
		kids, err := parseRefs(m.Sub[0])
		if err != nil {
			st.malformed(m, "Kids", err)
			return nil
		}
		st.kids = append(st.kids, kids...)
		if st.hasRef {
			for _, kid := range kids {
				st.tree.SetParent(kid, st.ref)
			}
		}

	case sequential.KindParent:
		if !st.hasRef {
			st.log.Debug("/Parent outside of an object", slog.Int64("pos", m.Pos))
			return nil
		}
		parent, err := pagetree.ParseReference(m.Sub[0], m.Sub[1])
		if err != nil {
			st.log.Debug("invalid /Parent reference",
				slog.Int64("pos", m.Pos), slog.Any("err", err))
			return nil
		}
		st.tree.SetParent(st.ref, parent)

	case sequential.KindUserUnit:
		if st.depth != 1 || !st.hasRef {
			return nil
		}
		unit, err := strconv.ParseFloat(m.Sub[0], 64)
		if err == nil && !(unit > 0) {
			err = errNotPositive
		}
		if err != nil {
			st.malformed(m, "UserUnit", err)
			return nil
		}
		st.tree.SetScale(st.ref, unit)
	}
	return nil
}

// finish records the pending object, if it is part of the page tree, and
// resets the state for the next object.
func (st *objectState) finish() {
	if st.hasRef {
		switch st.tp {
		case "Page":
			// A page with a broken /MediaBox is left out, so that the
			// page count check fails instead of a box being inherited.
			switch {
			case st.box != nil:
				st.tree.AddPage(st.ref, *st.box)
			case !st.badBox:
				st.tree.AddBarePage(st.ref)
			}
		case "Pages":
			if len(st.kids) > 0 {
				st.tree.AddContainer(st.ref, st.kids)
			}
			if st.box != nil {
				st.tree.SetInherited(st.ref, *st.box)
			}
		}
	}

	st.hasRef = false
	st.tp = ""
	st.box = nil
	st.badBox = false
	st.kids = st.kids[:0]
}

func (st *objectState) malformed(m *sequential.Match, attr string, err error) {
	e := &MalformedAttributeError{
		Pos:   m.Pos,
		Attr:  attr,
		Value: m.Sub[0],
		Err:   err,
	}
	if st.hasRef {
		e.Ref = st.ref
	}
	st.log.Warn("ignoring malformed attribute",
		slog.String("attr", attr),
		slog.Int64("pos", m.Pos),
		slog.Any("err", e))
}

// parseBox converts the contents of a /MediaBox array into a rectangle.
// The corners are kept as given.
func parseBox(s string) (rect.Rect, error) {
	fields := strings.FieldsFunc(s, isSpace)
	if len(fields) != 4 {
		return rect.Rect{}, errArity
	}
	var x [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return rect.Rect{}, err
		}
		x[i] = v
	}
	return rect.Rect{LLx: x[0], LLy: x[1], URx: x[2], URy: x[3]}, nil
}

// parseRefs converts the contents of a /Kids array into a list of
// references.
func parseRefs(s string) ([]pagetree.Reference, error) {
	var refs []pagetree.Reference
	var nums []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isSpace(rune(c)):
			i++
		case c == 'R':
			if len(nums) != 2 {
				return nil, errRefList
			}
			ref, err := pagetree.ParseReference(nums[0], nums[1])
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
			nums = nums[:0]
			i++
		default:
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j == i || len(nums) == 2 {
				return nil, errRefList
			}
			nums = append(nums, s[i:j])
			i = j
		}
	}
	if len(nums) > 0 {
		return nil, errRefList
	}
	return refs, nil
}

func isSpace(r rune) bool {
	switch r {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}
