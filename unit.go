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

// Unit selects the unit used for reported page sizes.
type Unit string

// These are the supported units.
const (
	// Points are the native PDF unit, 1/72 inch (scaled by /UserUnit where
	// present).
	Points      Unit = "px"
	Inches      Unit = "in"
	Millimeters Unit = "mm"
	Centimeters Unit = "cm"
)

// ParseUnit converts a unit name into a Unit.  The accepted names are
// "px" (PDF points), "in", "mm" and "cm".
func ParseUnit(name string) (Unit, error) {
	u := Unit(name)
	if _, ok := unitFactor[u]; !ok {
		return "", &UnsupportedUnitError{Unit: name}
	}
	return u, nil
}

// Factor returns the size of one PDF point in the unit u.
// The result is zero for unsupported units.
func (u Unit) Factor() float64 {
	return unitFactor[u]
}

var unitFactor = map[Unit]float64{
	Points:      1,
	Inches:      1.0 / 72,
	Millimeters: 25.4 / 72,
	Centimeters: 2.54 / 72,
}
