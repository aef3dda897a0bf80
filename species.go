/*
 * species.go, part of gomolsim.
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

	"github.com/rmera/gomolsim/space"
)

//BondPotential is the energy of a bond as a function of the squared distance
//between the bonded atoms. Derivatives follow the same convention as the
//pair potentials, DU=r*du/dr and D2U=r^2*d2u/dr2.
type BondPotential interface {
	U(r2 float64) float64
	DU(r2 float64) float64
	D2U(r2 float64) float64
}

//Bond is an intramolecular interaction between the atoms I and J of a
//species, indexes relative to the molecule.
type Bond struct {
	I, J      int
	Potential BondPotential
}

//Species is the template from which molecules are built.
type Species struct {
	name  string
	types []*AtomType
	conf  *space.Matrix
	bonds []Bond
}

//NewSpecies returns a species with the given atom types, the coordinates of the atoms
//relative to (typically) the center of mass, and the bonds among them.
func NewSpecies(name string, types []*AtomType, conformation *space.Matrix, bonds ...Bond) (*Species, error) {
	if len(types) == 0 {
		return nil, ConfigError("Species without atoms", "NewSpecies")
	}
	if conformation == nil || conformation.NVecs() != len(types) {
		return nil, ConfigError(fmt.Sprintf("Species %s: %d atom types but conformation doesn't match", name, len(types)), "NewSpecies")
	}
	for _, b := range bonds {
		if b.I == b.J || b.I < 0 || b.J < 0 || b.I >= len(types) || b.J >= len(types) {
			return nil, ConfigError(fmt.Sprintf("Species %s: invalid bond %d-%d", name, b.I, b.J), "NewSpecies")
		}
		if b.Potential == nil {
			return nil, ConfigError(fmt.Sprintf("Species %s: bond %d-%d without potential", name, b.I, b.J), "NewSpecies")
		}
	}
	t := make([]*AtomType, len(types))
	copy(t, types)
	bo := make([]Bond, len(bonds))
	copy(bo, bonds)
	return &Species{name: name, types: t, conf: conformation.Clone(), bonds: bo}, nil
}

//NewMonatomic returns a species with one atom of type t, in dim dimensions.
func NewMonatomic(t *AtomType, dim int) *Species {
	return &Species{name: t.Name(), types: []*AtomType{t}, conf: space.Zeros(1, dim)}
}

func (S *Species) Name() string { return S.name }

//NAtoms returns the number of atoms in each molecule of the species.
func (S *Species) NAtoms() int { return len(S.types) }

//Dim returns the dimension of the conformation.
func (S *Species) Dim() int { return S.conf.Dim() }

//Type returns the type of the ith atom of the species.
func (S *Species) Type(i int) *AtomType { return S.types[i] }

//Conformation returns the relative coordinates of the atoms. It must not be
//modified.
func (S *Species) Conformation() *space.Matrix { return S.conf }

//Bonds returns the bonds of the species. The slice must not be modified.
func (S *Species) Bonds() []Bond { return S.bonds }

//Mass returns the total mass of one molecule.
func (S *Species) Mass() float64 {
	m := 0.0
	for _, t := range S.types {
		m += t.Mass()
	}
	return m
}

//Molecule is an instance of a species in a box.
type Molecule struct {
	species *Species
	index   int
	atoms   []int
}

//Species returns the species of the molecule.
func (M *Molecule) Species() *Species { return M.species }

//Index returns the index of the molecule among the molecules of its species in the box.
//It can change when other molecules are removed.
func (M *Molecule) Index() int { return M.index }

//Atoms returns the indexes, in the box, of the atoms of the molecule,
//in the order of the species. The slice must not be modified, and it is
//only valid until the box changes.
func (M *Molecule) Atoms() []int { return M.atoms }

//NAtoms returns the number of atoms in the molecule.
func (M *Molecule) NAtoms() int { return len(M.atoms) }

//CenterOfMass puts in dst the center of mass of the molecule, built from the
//minimum-image positions of the atoms relative to the first one. The result
//is in the central image. Atoms with infinite mass are treated as having mass 1.
func (M *Molecule) CenterOfMass(B *Box, dst space.Vec) {
	first := B.Position(M.atoms[0])
	if len(M.atoms) == 1 {
		dst.E(first)
		return
	}
	dim := len(dst)
	dr := space.NewVec(dim)
	dst.Zero()
	tot := 0.0
	for _, a := range M.atoms[1:] {
		m := B.Type(a).Mass()
		if math.IsInf(m, 1) {
			m = 1
		}
		dr.Ev1Mv2(B.Position(a), first)
		B.Boundary().NearestImage(dr)
		dst.PEa1Tv1(m, dr)
		tot += m
	}
	m0 := B.Type(M.atoms[0]).Mass()
	if math.IsInf(m0, 1) {
		m0 = 1
	}
	tot += m0
	dst.TE(1 / tot)
	dst.PE(first)
	B.Boundary().CentralImage(dst)
}
