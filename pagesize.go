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
	"fmt"
	"io"
	"log/slog"

	"seehuhn.de/go/pagesize/pagetree"
	"seehuhn.de/go/pagesize/sequential"
)

const (
	// DefaultChunkSize is the number of bytes read at a time, if no chunk
	// size is given in the options.
	DefaultChunkSize = 1 << 20

	// MinChunkSize is the smallest allowed chunk size.  Chunks must be
	// larger than any marker in the file, except for /Kids arrays.
	MinChunkSize = 64
)

// Options control how a file is scanned.  The zero value selects the
// defaults.
type Options struct {
	// ChunkSize is the number of bytes read at a time.  At most about two
	// chunks are kept in memory, plus the text of a /Kids array which spans
	// several chunks.
	ChunkSize int

	// Unit is the unit for the reported sizes.  The default is [Points].
	Unit Unit

	// Logger receives diagnostic messages, for example about ignored
	// malformed entries.  If this is nil, slog.Default() is used.
	Logger *slog.Logger
}

// Size is the width and height of one page.
//
// The size is taken from the /MediaBox of the page, as written in the file,
// and is scaled by the /UserUnit entries of the page and its ancestors.
// The values may be negative if the corners of the box are not given in
// the usual order.  Page rotation is not applied.
type Size struct {
	Width, Height float64
}

// Scan reads a PDF file from r and returns the sizes of all pages, in page
// order.  The reader is read once, from start to end.  If opt is nil, the
// default options are used.
//
// If the page tree found in the file is inconsistent, a [*StructuralError]
// is returned.  Invalid options are reported before r is read.
func Scan(r io.Reader, opt *Options) ([]Size, error) {
	if opt == nil {
		opt = &Options{}
	}

	chunkSize := opt.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	} else if chunkSize < MinChunkSize {
		return nil, ErrChunkSize
	}

	unit := opt.Unit
	if unit == "" {
		unit = Points
	}
	factor := unit.Factor()
	if factor == 0 {
		return nil, &UnsupportedUnitError{Unit: string(unit)}
	}

	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tree, err := readTree(r, chunkSize, logger)
	if err != nil {
		return nil, err
	}
	return resolve(tree, factor)
}

// readTree runs the scanner over the whole input and collects the page
// tree.
func readTree(r io.Reader, chunkSize int, logger *slog.Logger) (*pagetree.Tables, error) {
	tree := pagetree.NewTables()
	st := &objectState{
		tree: tree,
		log:  logger,
	}

	s := sequential.NewScanner(r, chunkSize)
	for {
		m, err := s.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			buf := s.Buffer()
			return nil, fmt.Errorf("read error after byte %d: %w",
				buf.Offset()+int64(buf.Len()), err)
		}

		err = st.apply(m)
		if err != nil {
			return nil, err
		}
	}
	if st.depth != 0 {
		logger.Debug("input ends inside a dictionary", slog.Int("depth", st.depth))
	}

	logger.Debug("scan complete",
		slog.Int("pages", tree.NumPages()),
		slog.Int("nodes", len(tree.Kids)),
		slog.Int("peak_buffer", s.Buffer().Peak()))
	return tree, nil
}

// resolve converts the page tree into the list of page sizes.
func resolve(tree *pagetree.Tables, factor float64) ([]Size, error) {
	pages, err := tree.Flatten()
	if err != nil {
		return nil, &StructuralError{Pos: -1, Err: err}
	}

	res := make([]Size, len(pages))
	for i, ref := range pages {
		box, err := tree.MediaBox(ref)
		if err != nil {
			return nil, &StructuralError{Pos: -1, Err: err}
		}
		userUnit, err := tree.UserUnit(ref)
		if err != nil {
			return nil, &StructuralError{Pos: -1, Err: err}
		}

		f := userUnit * factor
		res[i] = Size{
			Width:  box.Dx() * f,
			Height: box.Dy() * f,
		}
	}
	return res, nil
}
