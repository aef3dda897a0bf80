/*
 * lattice.go, part of gomolsim.
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

//Package lattice builds initial configurations, placing molecules on the
//sites of a crystal lattice or at random, and sets the density of a box.
package lattice

import (
	"fmt"
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/space"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

//Lattice is a Bravais lattice with a basis, described by a rectangular
//conventional cell. The basis is given in fractional coordinates of the cell.
type Lattice struct {
	name  string
	shape space.Vec //relative edge lengths of the conventional cell
	basis *space.Matrix
}

func newLattice(name string, shape space.Vec, basis ...float64) *Lattice {
	b, err := space.NewMatrix(basis, len(shape))
	if err != nil {
		panic(err)
	}
	return &Lattice{name: name, shape: shape, basis: b}
}

//SimpleCubic returns the 3D simple cubic lattice.
func SimpleCubic() *Lattice {
	return newLattice("sc", space.Vec{1, 1, 1}, 0, 0, 0)
}

//BCC returns the 3D body-centered cubic lattice.
func BCC() *Lattice {
	return newLattice("bcc", space.Vec{1, 1, 1}, 0, 0, 0, 0.5, 0.5, 0.5)
}

//FCC returns the 3D face-centered cubic lattice.
func FCC() *Lattice {
	return newLattice("fcc", space.Vec{1, 1, 1},
		0, 0, 0,
		0.5, 0.5, 0,
		0.5, 0, 0.5,
		0, 0.5, 0.5)
}

//Square returns the 2D square lattice.
func Square() *Lattice {
	return newLattice("square", space.Vec{1, 1}, 0, 0)
}

//Triangular returns the 2D triangular (hexagonal) lattice, as a rectangular
//cell with two sites.
func Triangular() *Lattice {
	return newLattice("triangular", space.Vec{1, math.Sqrt(3)}, 0, 0, 0.5, 0.5)
}

func (L *Lattice) Name() string { return L.name }

func (L *Lattice) Dim() int { return len(L.shape) }

//BasisSize returns the number of sites in each conventional cell.
func (L *Lattice) BasisSize() int { return L.basis.NVecs() }

//Grid returns the smallest number of conventional cells along each axis
//that gives at least n sites in a box with the given perpendicular widths
//while keeping the cells as close as possible to their ideal shape.
func (L *Lattice) Grid(widths space.Vec, n int) []int {
	dim := L.Dim()
	a := make([]float64, dim)
	amax := 0.0
	for d := range a {
		a[d] = widths[d] / L.shape[d]
		amax = math.Max(amax, a[d])
	}
	cells := make([]int, dim)
	for k := 1; ; k++ {
		tot := L.BasisSize()
		for d := range cells {
			cells[d] = int(math.Max(1, math.Round(float64(k)*a[d]/amax)))
			tot *= cells[d]
		}
		if tot >= n {
			return cells
		}
	}
}

//Sites returns the positions of at least n lattice sites filling the
//boundary b, in the order in which Fill uses them.
func Sites(b space.Boundary, L *Lattice, n int) (*space.Matrix, error) {
	dim := b.Dim()
	if dim != L.Dim() {
		return nil, molsim.ConfigError(fmt.Sprintf("%s: %dD lattice %s in a %dD box", molsim.ErrDimensionMismatch, L.Dim(), L.name, dim), "Sites")
	}
	cells := L.Grid(b.Widths(), n)
	total := L.BasisSize()
	for _, c := range cells {
		total *= c
	}
	h := b.Edges()
	sites := space.Zeros(0, dim)
	idx := make([]int, dim)
	f := mat.NewVecDense(dim, nil)
	r := mat.NewVecDense(dim, nil)
	for c := 0; c < total/L.BasisSize(); c++ {
		rem := c
		for d := dim - 1; d >= 0; d-- {
			idx[d] = rem % cells[d]
			rem /= cells[d]
		}
		for k := 0; k < L.BasisSize(); k++ {
			bas := L.basis.VecView(k)
			for d := 0; d < dim; d++ {
				//the small shift keeps the sites off the cell faces.
				f.SetVec(d, (float64(idx[d])+bas[d]+0.25)/float64(cells[d])-0.5)
			}
			r.MulVec(h, f)
			sites.Append(space.Vec(r.RawVector().Data))
		}
	}
	return sites, nil
}

//Fill places the centers of mass of all the molecules in the box on the
//sites of the lattice L, scaled to fill the box. The internal geometry of
//the molecules is kept. It returns a critical error if the dimension of L differs
//from that of the box.
//Any neighbor structure for the box must be rebuilt after Fill.
func Fill(box *molsim.Box, L *Lattice) error {
	mols := box.AllMolecules()
	sites, err := Sites(box.Boundary(), L, len(mols))
	if err != nil {
		return molsim.ErrDecorate(err, "Fill")
	}
	for k, m := range mols {
		moveTo(box, m, sites.VecView(k))
	}
	return nil
}

//moveTo translates m so its center of mass is at r.
func moveTo(box *molsim.Box, m *molsim.Molecule, r space.Vec) {
	shift := space.NewVec(box.Dim())
	m.CenterOfMass(box, shift)
	shift.Ev1Mv2(r, shift)
	for _, a := range m.Atoms() {
		p := box.Position(a)
		p.PE(shift)
		box.Boundary().CentralImage(p)
	}
}

//Random places the center of mass of each molecule of the box at a uniformly
//random point.
func Random(box *molsim.Box, rng *rand.Rand) {
	dim := box.Dim()
	h := box.Boundary().Edges()
	f := mat.NewVecDense(dim, nil)
	r := mat.NewVecDense(dim, nil)
	for _, m := range box.AllMolecules() {
		for d := 0; d < dim; d++ {
			f.SetVec(d, rng.Float64()-0.5)
		}
		r.MulVec(h, f)
		moveTo(box, m, space.Vec(r.RawVector().Data))
	}
}

//Inflate scales the box, and the positions of the molecules in it, so the
//number density of atoms is density.
func Inflate(box *molsim.Box, density float64) error {
	if box.NAtoms() == 0 {
		return molsim.ConfigError(molsim.ErrNoAtoms, "Inflate")
	}
	if density <= 0 || math.IsInf(density, 0) || math.IsNaN(density) {
		return molsim.ConfigError(fmt.Sprintf("%s: density %g", molsim.ErrBadParameter, density), "Inflate")
	}
	v := float64(box.NAtoms()) / density
	box.Scale(math.Pow(v/box.Boundary().Volume(), 1/float64(box.Dim())))
	return nil
}
