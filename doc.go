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

// Package pagesize reads the page sizes of a PDF file in a single pass.
//
// The file is read sequentially, in chunks, and only a few markers of the
// PDF syntax are recognised: object headers, dictionary delimiters, stream
// boundaries and the /Type, /MediaBox, /Kids, /Parent and /UserUnit entries
// of dictionaries.  This is enough to reconstruct the page tree and to find
// the size of every page, while memory use is bounded by the chunk size
// instead of the file size.  This makes the package useful for very large
// files, for example scans containing many full-page images.
//
// Basic usage:
//
//	fd, err := os.Open("in.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fd.Close()
//	sizes, err := pagesize.Scan(fd, &pagesize.Options{Unit: pagesize.Millimeters})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, s := range sizes {
//	    fmt.Printf("page %d: %.1f x %.1f mm\n", i+1, s.Width, s.Height)
//	}
//
// Since the file is not fully parsed, objects stored inside compressed
// object streams are not seen.  Files which keep their page tree in object
// streams cause a [*StructuralError].
package pagesize
