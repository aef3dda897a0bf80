/*
 * brute.go, part of gomolsim.
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
	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
)

//BruteForce returns the energy, virial and forces of box with the potential p acting
//between all pairs of atoms, from a plain double loop over minimum-image distances.
//It is meant as a reference for checking the faster computes.
func BruteForce(box *molsim.Box, p potential.Soft) (float64, float64, *space.Matrix) {
	n := box.NAtoms()
	forces := space.Zeros(n, box.Dim())
	dr := space.NewVec(box.Dim())
	rc2 := p.Range() * p.Range()
	u, w := 0.0, 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dr.Ev1Mv2(box.Position(j), box.Position(i))
			box.Boundary().NearestImage(dr)
			r2 := dr.Squared()
			if r2 > rc2 {
				continue
			}
			u += p.U(r2)
			du := p.DU(r2)
			w += du
			forces.VecView(i).PEa1Tv1(du/r2, dr)
			forces.VecView(j).PEa1Tv1(-du/r2, dr)
		}
	}
	return u, w, forces
}
