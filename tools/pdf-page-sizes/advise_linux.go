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

//go:build linux

package main

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel that fd will be read once from start
// to end, so that read-ahead is increased and pages can be dropped from the
// cache early.
func adviseSequential(fd *os.File, logger *slog.Logger) {
	err := unix.Fadvise(int(fd.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	if err != nil {
		logger.Debug("fadvise failed", slog.Any("err", err))
	}
}
