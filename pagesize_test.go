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

package pagesize_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pagesize"
	"seehuhn.de/go/pagesize/internal/pdftest"
	"seehuhn.de/go/pagesize/pagetree"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// numbered returns n pages of different sizes.
func numbered(n int) ([]pdftest.Page, []pagesize.Size) {
	pages := make([]pdftest.Page, n)
	sizes := make([]pagesize.Size, n)
	for i := range pages {
		w, h := float64(100+i), float64(200+2*i)
		pages[i].MediaBox = pdftest.Box(w, h)
		sizes[i] = pagesize.Size{Width: w, Height: h}
	}
	return pages, sizes
}

func scan(t *testing.T, data []byte, opt *pagesize.Options) []pagesize.Size {
	t.Helper()
	if opt == nil {
		opt = &pagesize.Options{}
	}
	if opt.Logger == nil {
		opt.Logger = quiet
	}
	sizes, err := pagesize.Scan(bytes.NewReader(data), opt)
	if err != nil {
		t.Fatal(err)
	}
	return sizes
}

func TestTwoPages(t *testing.T) {
	pages := []pdftest.Page{
		{MediaBox: pdftest.Box(612, 792)},
		{MediaBox: pdftest.Box(300, 500)},
	}
	got := scan(t, pdftest.Bytes(pages, nil), nil)
	want := []pagesize.Size{{612, 792}, {300, 500}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

func TestPageOrder(t *testing.T) {
	for _, n := range []int{1, 2, 3, 15, 16, 17, 100, 16 * 16} {
		for _, opt := range []*pdftest.Options{
			nil,
			{MaxDegree: 3},
			{MaxDegree: 3, Reverse: true},
			{MaxDegree: 5, Compact: true},
		} {
			name := fmt.Sprintf("%d-%v", n, opt)
			if opt != nil {
				name = fmt.Sprintf("%d-%d-%t-%t", n, opt.MaxDegree, opt.Reverse, opt.Compact)
			}
			t.Run(name, func(t *testing.T) {
				pages, want := numbered(n)
				got := scan(t, pdftest.Bytes(pages, opt), nil)
				if d := cmp.Diff(want, got); d != "" {
					t.Errorf("wrong sizes (-want +got):\n%s", d)
				}
			})
		}
	}
}

func TestIdempotent(t *testing.T) {
	pages, _ := numbered(50)
	data := pdftest.Bytes(pages, &pdftest.Options{MaxDegree: 4})

	first := scan(t, data, nil)
	second := scan(t, data, nil)
	if d := cmp.Diff(first, second); d != "" {
		t.Errorf("results differ (-first +second):\n%s", d)
	}
}

func TestChunkSize(t *testing.T) {
	pages, want := numbered(300)
	for i := range pages {
		if i%7 == 0 {
			pages[i].Content = bytes.Repeat([]byte("q 1 0 0 1 0 0 cm << >> Q\n"), i)
		}
		if i%11 == 0 {
			pages[i].UserUnit = 2
			want[i].Width *= 2
			want[i].Height *= 2
		}
	}
	data := pdftest.Bytes(pages, &pdftest.Options{MaxDegree: 300})

	for _, chunkSize := range []int{pagesize.MinChunkSize, 65, 100, 127, 1000, 4096, 0} {
		t.Run(fmt.Sprint(chunkSize), func(t *testing.T) {
			got := scan(t, data, &pagesize.Options{ChunkSize: chunkSize})
			if d := cmp.Diff(want, got); d != "" {
				t.Errorf("wrong sizes (-want +got):\n%s", d)
			}
		})
	}
}

// TestKidsSplit moves a long /Kids array across all positions relative to
// the chunk boundaries.
func TestKidsSplit(t *testing.T) {
	pages, want := numbered(40)
	data := pdftest.Bytes(pages, &pdftest.Options{MaxDegree: 40})
	if !bytes.Contains(data, []byte("/Kids [")) {
		t.Fatal("test file has no /Kids array")
	}

	const chunkSize = 64
	for shift := 0; shift < chunkSize; shift++ {
		input := append(bytes.Repeat([]byte{' '}, shift), data...)
		got := scan(t, input, &pagesize.Options{ChunkSize: chunkSize})
		if d := cmp.Diff(want, got); d != "" {
			t.Errorf("shift %d: wrong sizes (-want +got):\n%s", shift, d)
		}
	}
}

func TestUnits(t *testing.T) {
	pages := []pdftest.Page{
		{MediaBox: pdftest.Box(612, 792)},
		{MediaBox: &rect.Rect{LLx: 10, LLy: 20, URx: 605, URy: 862}},
	}
	data := pdftest.Bytes(pages, nil)
	native := scan(t, data, &pagesize.Options{Unit: pagesize.Points})

	approx := cmpopts.EquateApprox(1e-12, 0)
	for _, test := range []struct {
		unit pagesize.Unit
		per  float64 // native units per unit
	}{
		{pagesize.Inches, 72},
		{pagesize.Millimeters, 72 / 25.4},
		{pagesize.Centimeters, 72 / 2.54},
	} {
		got := scan(t, data, &pagesize.Options{Unit: test.unit})
		back := make([]pagesize.Size, len(got))
		for i, s := range got {
			back[i] = pagesize.Size{Width: s.Width * test.per, Height: s.Height * test.per}
		}
		if d := cmp.Diff(native, back, approx); d != "" {
			t.Errorf("%s: wrong sizes (-want +got):\n%s", test.unit, d)
		}
	}

	inches := scan(t, data, &pagesize.Options{Unit: pagesize.Inches})
	want := []pagesize.Size{{8.5, 11}, {595.0 / 72, 842.0 / 72}}
	if d := cmp.Diff(want, inches, approx); d != "" {
		t.Errorf("wrong sizes in inches (-want +got):\n%s", d)
	}
}

func TestUserUnit(t *testing.T) {
	plain := []pdftest.Page{
		{MediaBox: pdftest.Box(612, 792)},
		{MediaBox: pdftest.Box(300, 500)},
		{MediaBox: pdftest.Box(300, 500)},
	}
	base := scan(t, pdftest.Bytes(plain, &pdftest.Options{MaxDegree: 2}), nil)

	scaled := []pdftest.Page{
		{MediaBox: pdftest.Box(612, 792)},
		{MediaBox: pdftest.Box(300, 500), UserUnit: 1.5},
		{MediaBox: pdftest.Box(300, 500), UserUnit: 0.25},
	}
	opt := &pdftest.Options{MaxDegree: 2, RootUserUnit: 4}
	got := scan(t, pdftest.Bytes(scaled, opt), nil)

	k := []float64{4, 4 * 1.5, 4 * 0.25}
	want := make([]pagesize.Size, len(base))
	for i, s := range base {
		want[i] = pagesize.Size{Width: s.Width * k[i], Height: s.Height * k[i]}
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

func TestInheritedMediaBox(t *testing.T) {
	pages := []pdftest.Page{
		{},
		{MediaBox: pdftest.Box(300, 500)},
		{},
	}
	opt := &pdftest.Options{MaxDegree: 2, RootMediaBox: pdftest.Box(595, 842)}
	got := scan(t, pdftest.Bytes(pages, opt), nil)
	want := []pagesize.Size{{595, 842}, {300, 500}, {595, 842}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

func TestStreamsIgnored(t *testing.T) {
	fake := []byte("99 0 obj\n<< /Type /Page /MediaBox [0 0 1 1] /Parent 1 0 R >>\n" +
		"<< /Type /Pages /Kids [99 0 R] >> >> >>")
	pages := []pdftest.Page{
		{MediaBox: pdftest.Box(612, 792), Content: fake},
		{MediaBox: pdftest.Box(300, 500), Content: []byte{0, 0xff, '>', '>', 's'}},
	}
	got := scan(t, pdftest.Bytes(pages, nil), &pagesize.Options{ChunkSize: 64})
	want := []pagesize.Size{{612, 792}, {300, 500}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

// file assembles a PDF body from the given objects, without a
// cross-reference table.
func file(objects ...string) []byte {
	b := &strings.Builder{}
	b.WriteString("%PDF-1.7\n")
	for i, obj := range objects {
		fmt.Fprintf(b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	return []byte(b.String())
}

func TestMalformedMediaBox(t *testing.T) {
	roots := []string{
		"<< /Type /Pages /Kids [2 0 R 3 0 R] /Count 2 >>",
		// a broken box must not be replaced by the inherited one
		"<< /Type /Pages /Kids [2 0 R 3 0 R] /Count 2 /MediaBox [0 0 595 842] >>",
	}
	for i, root := range roots {
		for _, box := range []string{"0 0 6.1.2 792", "0 0 612", "0 0 612 792 1", "- 0 612 792"} {
			t.Run(fmt.Sprintf("%d-%s", i, box), func(t *testing.T) {
				data := file(
					root,
					"<< /Type /Page /Parent 1 0 R /MediaBox [0 0 612 792] >>",
					"<< /Type /Page /Parent 1 0 R /MediaBox ["+box+"] >>",
				)
				logBuf := &bytes.Buffer{}
				logger := slog.New(slog.NewTextHandler(logBuf, nil))

				sizes, err := pagesize.Scan(bytes.NewReader(data), &pagesize.Options{Logger: logger})
				var structErr *pagesize.StructuralError
				if !errors.As(err, &structErr) {
					t.Fatalf("got %v, %v, want a StructuralError", sizes, err)
				}
				if !errors.Is(err, pagetree.ErrDanglingPage) {
					t.Errorf("got error %v, want %v", err, pagetree.ErrDanglingPage)
				}
				if !strings.Contains(logBuf.String(), "attr=MediaBox") {
					t.Errorf("malformed attribute not logged: %q", logBuf.String())
				}
			})
		}
	}
}

func TestPageWithoutBoxOutsideTree(t *testing.T) {
	data := file(
		"<< /Type /Pages /Kids [2 0 R] >>",
		"<< /Type /Page /MediaBox [0 0 612 792] >>",
		"<< /Type /Page >>",
	)
	got := scan(t, data, nil)
	want := []pagesize.Size{{612, 792}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

func TestUpdateWithoutBox(t *testing.T) {
	data := file(
		"<< /Type /Pages /Kids [2 0 R] >>",
		"<< /Type /Page /MediaBox [0 0 612 792] >>",
	)
	// the updated page has no /MediaBox entry, the old one stays in effect
	data = append(data, "2 0 obj\n<< /Type /Page /Rotate 90 >>\nendobj\n"...)

	got := scan(t, data, nil)
	want := []pagesize.Size{{612, 792}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

func TestMalformedUserUnit(t *testing.T) {
	for _, value := range []string{"0", "-2", "1.2.3", "."} {
		t.Run(value, func(t *testing.T) {
			data := file(
				"<< /Type /Pages /Kids [2 0 R] /Count 1 >>",
				"<< /Type /Page /Parent 1 0 R /MediaBox [0 0 612 792] /UserUnit "+value+" >>",
			)
			logBuf := &bytes.Buffer{}
			logger := slog.New(slog.NewTextHandler(logBuf, nil))

			got := scan(t, data, &pagesize.Options{Logger: logger})
			want := []pagesize.Size{{612, 792}}
			if d := cmp.Diff(want, got); d != "" {
				t.Errorf("wrong sizes (-want +got):\n%s", d)
			}
			if !strings.Contains(logBuf.String(), "attr=UserUnit") {
				t.Errorf("malformed attribute not logged: %q", logBuf.String())
			}
		})
	}
}

func TestStructuralErrors(t *testing.T) {
	type testCase struct {
		name string
		data []byte
		want error
		pos  int64
	}
	cases := []testCase{
		{
			name: "empty",
			data: nil,
			want: pagetree.ErrNoRoot,
			pos:  -1,
		},
		{
			name: "no page tree",
			data: file("<< /Type /Catalog >>", "(hello)"),
			want: pagetree.ErrNoRoot,
			pos:  -1,
		},
		{
			name: "two roots",
			data: file(
				"<< /Type /Pages /Kids [3 0 R] >>",
				"<< /Type /Pages /Kids [4 0 R] >>",
				"<< /Type /Page /MediaBox [0 0 1 1] >>",
				"<< /Type /Page /MediaBox [0 0 1 1] >>",
			),
			want: pagetree.ErrMultipleRoots,
			pos:  -1,
		},
		{
			name: "page outside the tree",
			data: file(
				"<< /Type /Pages /Kids [2 0 R] >>",
				"<< /Type /Page /MediaBox [0 0 1 1] >>",
				"<< /Type /Page /MediaBox [0 0 1 1] >>",
			),
			want: pagetree.ErrPageCount,
			pos:  -1,
		},
		{
			name: "missing page",
			data: file(
				"<< /Type /Pages /Kids [2 0 R 7 0 R] >>",
				"<< /Type /Page /MediaBox [0 0 1 1] >>",
			),
			want: pagetree.ErrDanglingPage,
			pos:  -1,
		},
		{
			name: "unbalanced dictionary",
			data: []byte("1 0 obj >>"),
			want: nil,
			pos:  8,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := pagesize.Scan(bytes.NewReader(c.data), &pagesize.Options{Logger: quiet})
			var structErr *pagesize.StructuralError
			if !errors.As(err, &structErr) {
				t.Fatalf("got error %v, want a StructuralError", err)
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Errorf("got error %v, want %v", err, c.want)
			}
			if structErr.Pos != c.pos {
				t.Errorf("got position %d, want %d", structErr.Pos, c.pos)
			}
		})
	}
}

func TestLatestVersionWins(t *testing.T) {
	data := file(
		"<< /Type /Pages /Kids [2 0 R] >>",
		"<< /Type /Page /MediaBox [0 0 612 792] >>",
	)
	// an incremental update replaces object 2
	data = append(data, "2 0 obj\n<< /Type /Page /MediaBox [0 0 300 500] >>\nendobj\n"...)

	got := scan(t, data, nil)
	want := []pagesize.Size{{300, 500}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong sizes (-want +got):\n%s", d)
	}
}

type forbiddenReader struct {
	t *testing.T
}

func (r forbiddenReader) Read([]byte) (int, error) {
	r.t.Error("unexpected read")
	return 0, io.EOF
}

func TestOptions(t *testing.T) {
	r := forbiddenReader{t}

	_, err := pagesize.Scan(r, &pagesize.Options{Unit: "pt"})
	var unitErr *pagesize.UnsupportedUnitError
	if !errors.As(err, &unitErr) || unitErr.Unit != "pt" {
		t.Errorf("got error %v, want an UnsupportedUnitError", err)
	}

	_, err = pagesize.Scan(r, &pagesize.Options{ChunkSize: pagesize.MinChunkSize - 1})
	if err != pagesize.ErrChunkSize {
		t.Errorf("got error %v, want %v", err, pagesize.ErrChunkSize)
	}
}

func TestParseUnit(t *testing.T) {
	for _, name := range []string{"px", "in", "mm", "cm"} {
		u, err := pagesize.ParseUnit(name)
		if err != nil || string(u) != name {
			t.Errorf("ParseUnit(%q) = %q, %v", name, u, err)
		}
	}
	for _, name := range []string{"", "pt", "PX", "inch"} {
		_, err := pagesize.ParseUnit(name)
		var unitErr *pagesize.UnsupportedUnitError
		if !errors.As(err, &unitErr) {
			t.Errorf("ParseUnit(%q): got error %v", name, err)
		}
	}
}

var errBroken = errors.New("broken reader")

type brokenReader struct {
	r io.Reader
}

func (r *brokenReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err == io.EOF {
		err = errBroken
	}
	return n, err
}

func TestReadError(t *testing.T) {
	pages, _ := numbered(3)
	data := pdftest.Bytes(pages, nil)
	r := &brokenReader{r: bytes.NewReader(data[:len(data)/2])}

	_, err := pagesize.Scan(r, &pagesize.Options{ChunkSize: 64, Logger: quiet})
	if !errors.Is(err, errBroken) {
		t.Errorf("got error %v, want %v", err, errBroken)
	}
}

func TestConcurrentScans(t *testing.T) {
	var files [][]byte
	var wants [][]pagesize.Size
	for i := 1; i <= 8; i++ {
		pages, want := numbered(10 * i)
		files = append(files, pdftest.Bytes(pages, &pdftest.Options{MaxDegree: i + 1}))
		wants = append(wants, want)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(files))
	results := make([][]pagesize.Size, len(files))
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pagesize.Scan(bytes.NewReader(files[i]),
				&pagesize.Options{ChunkSize: 128, Logger: quiet})
		}(i)
	}
	wg.Wait()

	for i := range files {
		if errs[i] != nil {
			t.Errorf("file %d: %v", i, errs[i])
			continue
		}
		if d := cmp.Diff(wants[i], results[i]); d != "" {
			t.Errorf("file %d: wrong sizes (-want +got):\n%s", i, d)
		}
	}
}

func FuzzScan(f *testing.F) {
	pages, _ := numbered(5)
	f.Add(pdftest.Bytes(pages, nil))
	f.Add(pdftest.Bytes(pages, &pdftest.Options{MaxDegree: 2, Compact: true}))
	f.Add(pdftest.Bytes(pages, &pdftest.Options{MaxDegree: 3, Reverse: true, RootUserUnit: 2}))
	f.Add(file(
		"<< /Type /Pages /Kids [2 0 R] /MediaBox [0 0 1 1] >>",
		"<< /Type /Page /Contents 3 0 R >>",
		"<< /Length 9 >>\nstream\n<< >> >>\nendstream",
	))

	f.Fuzz(func(t *testing.T, data []byte) {
		small := &pagesize.Options{ChunkSize: pagesize.MinChunkSize, Logger: quiet}
		first, err := pagesize.Scan(bytes.NewReader(data), small)
		large := &pagesize.Options{ChunkSize: 4096, Logger: quiet}
		other, otherErr := pagesize.Scan(bytes.NewReader(data), large)
		if (err == nil) != (otherErr == nil) {
			t.Fatalf("chunk size changes the outcome: %v vs. %v", err, otherErr)
		}
		if err != nil {
			var structErr *pagesize.StructuralError
			if !errors.As(err, &structErr) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			return
		}
		if d := cmp.Diff(first, other); d != "" {
			t.Errorf("chunk size changes the result (-small +large):\n%s", d)
		}

		second, err := pagesize.Scan(bytes.NewReader(data), small)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(first, second); d != "" {
			t.Errorf("results differ (-first +second):\n%s", d)
		}
	})
}
