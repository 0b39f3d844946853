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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/pagesize"
	"seehuhn.de/go/pagesize/tools/internal/buildinfo"
	"seehuhn.de/go/pagesize/tools/internal/profile"
)

var (
	unitArg    = flag.String("u", "px", "output `unit`: px, in, mm or cm")
	chunkArg   = flag.Int("chunk", pagesize.DefaultChunkSize, "read the input in chunks of `n` bytes")
	langArg    = flag.String("lang", "en", "`language` used to format numbers")
	verbose    = flag.Bool("v", false, "print diagnostic messages")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdf-page-sizes \u2014 show the page sizes of PDF files\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("pdf-page-sizes"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  pdf-page-sizes [options] <file.pdf>...\n\n")
		fmt.Fprintf(os.Stderr, "The files are read once, from start to end, and memory use does\n")
		fmt.Fprintf(os.Stderr, "not depend on the file size.  When the output is not a terminal,\n")
		fmt.Fprintf(os.Stderr, "one tab-separated line is printed per page.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pdf-page-sizes scan.pdf\n")
		fmt.Fprintf(os.Stderr, "  pdf-page-sizes -u mm -lang de *.pdf\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pdf-page-sizes:", err)
		os.Exit(1)
	}
}

func run() error {
	unit, err := pagesize.ParseUnit(*unitArg)
	if err != nil {
		return err
	}
	tag, err := language.Parse(*langArg)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", *langArg, err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer func() {
		if err := stop(); err != nil {
			logger.Error("profiling failed", slog.Any("err", err))
		}
	}()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	out := &printer{
		w:     w,
		p:     message.NewPrinter(tag),
		unit:  unit,
		table: term.IsTerminal(int(os.Stdout.Fd())),
	}

	opt := &pagesize.Options{
		ChunkSize: *chunkArg,
		Unit:      unit,
		Logger:    logger,
	}
	for _, fname := range flag.Args() {
		sizes, err := scanFile(fname, opt)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
		out.print(fname, sizes)
	}
	return nil
}

func scanFile(fname string, opt *pagesize.Options) ([]pagesize.Size, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	adviseSequential(fd, opt.Logger)

	opt.Logger.Debug("scanning", slog.String("file", fname))
	return pagesize.Scan(fd, opt)
}

// printer writes the page sizes, either as a table for humans or as
// tab-separated values for other programs.
type printer struct {
	w     io.Writer
	p     *message.Printer
	unit  pagesize.Unit
	table bool
}

func (out *printer) print(fname string, sizes []pagesize.Size) {
	if !out.table {
		for i, s := range sizes {
			fmt.Fprintf(out.w, "%s\t%d\t%s\t%s\n", fname, i+1,
				strconv.FormatFloat(s.Width, 'f', -1, 64),
				strconv.FormatFloat(s.Height, 'f', -1, 64))
		}
		return
	}

	out.p.Fprintf(out.w, "%s: %d pages\n", fname, len(sizes))
	wd := len(strconv.Itoa(len(sizes)))
	for i, s := range sizes {
		out.p.Fprintf(out.w, "  %*d. %.2f × %.2f %s\n", wd, i+1, s.Width, s.Height, out.unit)
	}
}
