/*
 * atomtype.go, part of gomolsim.
 *
 * Copyright 2024 The gomolsim authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package molsim

import (
	"fmt"
	"math"
)

//AtomType holds the properties shared by all the atoms of one kind.
//It is immutable once created.
type AtomType struct {
	name   string
	mass   float64
	charge float64
}

//NewAtomType returns a new type with the given name, mass and charge.
//An infinite mass gives atoms that never move in molecular dynamics.
func NewAtomType(name string, mass, charge float64) *AtomType {
	if !(mass > 0) {
		panic(PanicMsg(fmt.Sprintf("gomolsim: Invalid mass %g for atom type %s", mass, name)))
	}
	return &AtomType{name: name, mass: mass, charge: charge}
}

func (A *AtomType) Name() string    { return A.name }
func (A *AtomType) Mass() float64   { return A.mass }
func (A *AtomType) Charge() float64 { return A.charge }

//RMass returns the inverse of the mass, which is 0 for fixed atoms.
func (A *AtomType) RMass() float64 {
	if math.IsInf(A.mass, 1) {
		return 0
	}
	return 1 / A.mass
}

func (A *AtomType) String() string {
	return fmt.Sprintf("%s(m=%g,q=%g)", A.name, A.mass, A.charge)
}
