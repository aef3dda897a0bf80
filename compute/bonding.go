/*
 * bonding.go, part of gomolsim.
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

package compute

import (
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/space"
)

//Bonding is the energy of the bonds of all the molecules in a box.
type Bonding struct {
	box    *molsim.Box
	forces *space.Matrix
	virial float64
	dr     space.Vec
}

func NewBonding(box *molsim.Box) *Bonding {
	return &Bonding{box: box, forces: space.Zeros(0, box.Dim()), dr: space.NewVec(box.Dim())}
}

//bond returns the energy and r*du/dr of bond b of molecule m, and leaves in
//B.dr the vector from the first atom of the bond to the second one.
func (B *Bonding) bond(m *molsim.Molecule, b molsim.Bond) (float64, float64) {
	atoms := m.Atoms()
	B.dr.Ev1Mv2(B.box.Position(atoms[b.J]), B.box.Position(atoms[b.I]))
	B.box.Boundary().NearestImage(B.dr)
	r2 := B.dr.Squared()
	return b.Potential.U(r2), b.Potential.DU(r2)
}

func (B *Bonding) ComputeAll(doForces bool) float64 {
	if doForces {
		B.forces.Resize(B.box.NAtoms())
		B.forces.Zero()
	}
	u := 0.0
	B.virial = 0
	for _, s := range B.box.Species() {
		bonds := s.Bonds()
		if len(bonds) == 0 {
			continue
		}
		for _, m := range B.box.Molecules(s) {
			atoms := m.Atoms()
			for _, b := range bonds {
				e, du := B.bond(m, b)
				u += e
				B.virial += du
				if doForces {
					f := du / B.dr.Squared()
					B.forces.VecView(atoms[b.I]).PEa1Tv1(f, B.dr)
					B.forces.VecView(atoms[b.J]).PEa1Tv1(-f, B.dr)
				}
			}
		}
	}
	if IsOverlap(u) {
		return math.Inf(1)
	}
	return u
}

//ComputeAtoms returns the energy of the bonds with at least one end in atoms.
func (B *Bonding) ComputeAtoms(atoms []int) float64 {
	u := 0.0
	var done []*molsim.Molecule
	for _, a := range atoms {
		m := B.box.MoleculeOf(a)
		if len(m.Species().Bonds()) == 0 {
			continue
		}
		seen := false
		for _, d := range done {
			if d == m {
				seen = true
				break
			}
		}
		if seen {
			continue
		}
		done = append(done, m)
		matoms := m.Atoms()
		for _, b := range m.Species().Bonds() {
			if contains(atoms, matoms[b.I]) || contains(atoms, matoms[b.J]) {
				e, _ := B.bond(m, b)
				u += e
			}
		}
	}
	return u
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func (B *Bonding) Virial() float64 { return B.virial }

func (B *Bonding) Forces() *space.Matrix { return B.forces }
