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

// Package pdftest writes small PDF files for use in tests.
//
// The files are syntactically valid, with a balanced page tree and a
// cross-reference table, but contain no page content beyond what is given
// in [Page.Content].
package pdftest

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"seehuhn.de/go/geom/rect"
)

// Page describes one page of a test file.
type Page struct {
	// MediaBox is the media box of the page.  If this is nil, the page has
	// no /MediaBox entry.
	MediaBox *rect.Rect

	// UserUnit, if non-zero, is written as the /UserUnit entry of the page.
	UserUnit float64

	// Content, if non-nil, is written as the content stream of the page.
	Content []byte
}

// Options control the layout of the generated file.
type Options struct {
	// MaxDegree is the maximal number of children of a page tree node.
	// The default is 16.
	MaxDegree int

	// RootMediaBox and RootUserUnit, if set, are added to the root of the
	// page tree.
	RootMediaBox *rect.Rect
	RootUserUnit float64

	// Compact omits optional white space.
	Compact bool

	// Reverse writes the objects in reverse order, so that every page tree
	// node appears after its children.
	Reverse bool
}

// Box returns a pointer to the media box [0 0 w h].
func Box(w, h float64) *rect.Rect {
	return &rect.Rect{URx: w, URy: h}
}

// Write writes a PDF file with the given pages to w.
func Write(w io.Writer, pages []Page, opt *Options) error {
	_, err := w.Write(Bytes(pages, opt))
	return err
}

// Bytes returns the contents of a PDF file with the given pages.
func Bytes(pages []Page, opt *Options) []byte {
	if opt == nil {
		opt = &Options{}
	}
	maxDegree := opt.MaxDegree
	if maxDegree < 2 {
		maxDegree = 16
	}

	f := &file{
		opt:     opt,
		objects: make(map[int]string),
		next:    catalogNum + 1,
	}

	var tail []*node
	for i := range pages {
		n := &node{num: f.alloc(), page: &pages[i]}
		tail = append(tail, n)
		for {
			k := len(tail)
			if k < maxDegree || tail[k-1].depth != tail[k-maxDegree].depth {
				break
			}
			tail = f.merge(tail, k-maxDegree, k)
		}
	}

	// Collapse the tail into a single root node.
	for len(tail) > 1 {
		start := len(tail) - maxDegree
		if start < 0 {
			start = 0
		}
		for start > 0 && tail[start-1].depth == tail[start].depth {
			start++
		}
		tail = f.merge(tail, start, len(tail))
	}
	if len(tail) == 0 || tail[0].page != nil {
		tail = f.merge(tail, 0, len(tail))
	}
	root := tail[0]

	f.encode(root, 0, true)
	f.objects[catalogNum] = f.dict("/Type /Catalog /Pages " + ref(root.num))
	return f.serialize()
}

const catalogNum = 1

type node struct {
	num   int
	depth int
	kids  []*node
	page  *Page
	count int
}

type file struct {
	opt     *Options
	objects map[int]string
	next    int
}

func (f *file) alloc() int {
	num := f.next
	f.next++
	return num
}

// merge replaces tail[start:end] with a new node which has these nodes as
// its children.
func (f *file) merge(tail []*node, start, end int) []*node {
	kids := make([]*node, end-start)
	copy(kids, tail[start:end])

	parent := &node{
		num:  f.alloc(),
		kids: kids,
	}
	for _, kid := range kids {
		if kid.depth+1 > parent.depth {
			parent.depth = kid.depth + 1
		}
		if kid.page != nil {
			parent.count++
		} else {
			parent.count += kid.count
		}
	}
	return append(tail[:start], parent)
}

// encode stores the objects for the subtree rooted at n.
func (f *file) encode(n *node, parent int, isRoot bool) {
	var parts []string
	if n.page != nil {
		parts = append(parts, "/Type /Page", "/Parent "+ref(parent))
		if n.page.MediaBox != nil {
			parts = append(parts, "/MediaBox "+box(n.page.MediaBox))
		}
		if n.page.UserUnit != 0 {
			parts = append(parts, "/UserUnit "+num(n.page.UserUnit))
		}
		if n.page.Content != nil {
			contents := f.alloc()
			f.objects[contents] = f.dict(fmt.Sprintf("/Length %d", len(n.page.Content))) +
				"\nstream\n" + string(n.page.Content) + "\nendstream"
			parts = append(parts, "/Contents "+ref(contents))
		}
		f.objects[n.num] = f.dict(strings.Join(parts, " "))
		return
	}

	kids := make([]string, len(n.kids))
	for i, kid := range n.kids {
		kids[i] = ref(kid.num)
	}
	parts = append(parts,
		"/Type /Pages",
		"/Kids ["+strings.Join(kids, " ")+"]",
		"/Count "+strconv.Itoa(n.count))
	if isRoot {
		if f.opt.RootMediaBox != nil {
			parts = append(parts, "/MediaBox "+box(f.opt.RootMediaBox))
		}
		if f.opt.RootUserUnit != 0 {
			parts = append(parts, "/UserUnit "+num(f.opt.RootUserUnit))
		}
	} else {
		parts = append(parts, "/Parent "+ref(parent))
	}
	f.objects[n.num] = f.dict(strings.Join(parts, " "))

	for _, kid := range n.kids {
		f.encode(kid, n.num, false)
	}
}

func (f *file) dict(body string) string {
	res := "<< " + body + " >>"
	if f.opt.Compact {
		res = compact(res)
	}
	return res
}

// serialize writes the header, all objects, the cross-reference table and
// the trailer.
func (f *file) serialize() []byte {
	nums := make([]int, 0, len(f.objects))
	for num := range f.objects {
		nums = append(nums, num)
	}
	slices.Sort(nums)
	if f.opt.Reverse {
		slices.Reverse(nums)
	}

	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make(map[int]int, len(nums))
	for _, num := range nums {
		offsets[num] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", num, f.objects[num])
	}

	size := f.next
	xref := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n0000000000 65535 f\r\n", size)
	for num := 1; num < size; num++ {
		if pos, ok := offsets[num]; ok {
			fmt.Fprintf(buf, "%010d 00000 n\r\n", pos)
		} else {
			buf.WriteString("0000000000 00000 f\r\n")
		}
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n",
		size, ref(catalogNum), xref)
	return buf.Bytes()
}

func ref(num int) string {
	return strconv.Itoa(num) + " 0 R"
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func box(r *rect.Rect) string {
	return "[" + num(r.LLx) + " " + num(r.LLy) + " " + num(r.URx) + " " + num(r.URy) + "]"
}

// compact removes the spaces around delimiters, which PDF does not require.
func compact(s string) string {
	r := strings.NewReplacer(
		"<< ", "<<", " >>", ">>",
		" /", "/", " [", "[", "[ ", "[", " ]", "]")
	return r.Replace(s)
}
