/*
 * box.go, part of gomolsim.
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
	"sort"

	"github.com/rmera/gomolsim/space"
)

//Box is a periodic region of space with the atoms and molecules in it.
//Atoms are identified by their index (the "leaf index"), which is dense:
//removing an atom moves the last atom into the freed index. Anything that
//keeps per-atom data outside the box (cell lists, forces) has to follow
//these relabelings, see RemoveMolecule.
//A Box is not safe for concurrent modification.
type Box struct {
	boundary space.Boundary
	pos      *space.Matrix
	vel      *space.Matrix //nil if the box is not dynamic
	types    []*AtomType
	typeIdx  []int
	molOf    []*Molecule
	slot     []int //position of each atom in its molecule

	typeReg   []*AtomType
	typeMap   map[*AtomType]int
	typeCount []int

	species []*Species
	specMap map[*Species]int
	mols    [][]*Molecule
}

//NewBox returns an empty box with the given boundary. If dynamic is true,
//the box stores velocities for its atoms.
func NewBox(b space.Boundary, dynamic ...bool) *Box {
	B := &Box{
		boundary: b,
		pos:      space.Zeros(0, b.Dim()),
		typeMap:  make(map[*AtomType]int),
		specMap:  make(map[*Species]int),
	}
	if len(dynamic) > 0 && dynamic[0] {
		B.vel = space.Zeros(0, b.Dim())
	}
	return B
}

//Boundary returns the boundary of the box.
func (B *Box) Boundary() space.Boundary { return B.boundary }

//SetBoundary replaces the boundary of the box. Positions are not changed.
func (B *Box) SetBoundary(b space.Boundary) {
	if b.Dim() != B.Dim() {
		panic(ErrShape)
	}
	B.boundary = b
}

//Dim returns the dimension of the box.
func (B *Box) Dim() int { return B.boundary.Dim() }

//Dynamic returns true if the box stores velocities.
func (B *Box) Dynamic() bool { return B.vel != nil }

//NAtoms returns the number of atoms in the box.
func (B *Box) NAtoms() int { return len(B.types) }

//Positions returns the coordinates of all the atoms. Changes to the matrix are
//changes to the box.
func (B *Box) Positions() *space.Matrix { return B.pos }

//Velocities returns the velocities of all the atoms, or nil if the box is not dynamic.
func (B *Box) Velocities() *space.Matrix { return B.vel }

//Position returns a view of the position of atom i.
func (B *Box) Position(i int) space.Vec { return B.pos.VecView(i) }

//Velocity returns a view of the velocity of atom i.
func (B *Box) Velocity(i int) space.Vec { return B.vel.VecView(i) }

//Type returns the atom type of atom i.
func (B *Box) Type(i int) *AtomType { return B.types[i] }

//Mass returns the mass of atom i.
func (B *Box) Mass(i int) float64 { return B.types[i].Mass() }

//TypeIndex returns the index of the type of atom i in the box's type registry.
func (B *Box) TypeIndex(i int) int { return B.typeIdx[i] }

//RegisterType adds t to the type registry, if needed, and returns its index.
//Types are registered automatically when molecules are added.
func (B *Box) RegisterType(t *AtomType) int {
	if k, ok := B.typeMap[t]; ok {
		return k
	}
	k := len(B.typeReg)
	B.typeMap[t] = k
	B.typeReg = append(B.typeReg, t)
	B.typeCount = append(B.typeCount, 0)
	return k
}

//NTypes returns the number of registered atom types.
func (B *Box) NTypes() int { return len(B.typeReg) }

//TypeByIndex returns the kth registered type.
func (B *Box) TypeByIndex(k int) *AtomType { return B.typeReg[k] }

//CountType returns the number of atoms of the kth registered type.
func (B *Box) CountType(k int) int { return B.typeCount[k] }

//MoleculeOf returns the molecule atom i belongs to.
func (B *Box) MoleculeOf(i int) *Molecule { return B.molOf[i] }

//Species returns the species with molecules in the box, in the order they were added.
func (B *Box) Species() []*Species { return B.species }

//Molecules returns the molecules of species s. The slice must not be modified.
func (B *Box) Molecules(s *Species) []*Molecule {
	k, ok := B.specMap[s]
	if !ok {
		return nil
	}
	return B.mols[k]
}

//NMolecules returns the number of molecules of species s.
func (B *Box) NMolecules(s *Species) int { return len(B.Molecules(s)) }

//AllMolecules returns all the molecules in the box, species by species.
func (B *Box) AllMolecules() []*Molecule {
	var r []*Molecule
	for _, m := range B.mols {
		r = append(r, m...)
	}
	return r
}

//Density returns the number density of atoms.
func (B *Box) Density() float64 {
	return float64(B.NAtoms()) / B.boundary.Volume()
}

func (B *Box) registerSpecies(s *Species) int {
	if k, ok := B.specMap[s]; ok {
		return k
	}
	if s.Dim() != B.Dim() {
		panic(ErrShape)
	}
	k := len(B.species)
	B.specMap[s] = k
	B.species = append(B.species, s)
	B.mols = append(B.mols, nil)
	return k
}

//AddMolecule adds a molecule of species s with the conformation of the species
//translated to center, and returns it. The new atoms get the last indexes of
//the box. Velocities, if present, are zero.
func (B *Box) AddMolecule(s *Species, center space.Vec) *Molecule {
	k := B.registerSpecies(s)
	m := &Molecule{species: s, index: len(B.mols[k]), atoms: make([]int, s.NAtoms())}
	r := space.NewVec(B.Dim())
	conf := s.Conformation()
	for i := 0; i < s.NAtoms(); i++ {
		r.E(conf.VecView(i))
		if center != nil {
			r.PE(center)
		}
		B.boundary.CentralImage(r)
		idx := B.pos.Append(r)
		if B.vel != nil {
			B.vel.Resize(idx + 1)
		}
		t := s.Type(i)
		ti := B.RegisterType(t)
		B.types = append(B.types, t)
		B.typeIdx = append(B.typeIdx, ti)
		B.typeCount[ti]++
		B.molOf = append(B.molOf, m)
		B.slot = append(B.slot, i)
		m.atoms[i] = idx
	}
	B.mols[k] = append(B.mols[k], m)
	return m
}

//SetNMolecules adds or removes molecules of species s until there are n of them.
//New molecules are placed at the origin, removal starts from the last molecule.
func (B *Box) SetNMolecules(s *Species, n int) {
	B.registerSpecies(s)
	for B.NMolecules(s) < n {
		B.AddMolecule(s, nil)
	}
	for B.NMolecules(s) > n {
		ms := B.Molecules(s)
		B.RemoveMolecule(ms[len(ms)-1], nil)
	}
}

//RemoveMolecule removes m from the box. Its atoms are removed in descending
//index order, each by moving the current last atom into its place. If notify
//is not nil, it is called with the index of each atom just before that atom
//is removed, while NAtoms()-1 is still the index of the atom that will be
//moved into it.
func (B *Box) RemoveMolecule(m *Molecule, notify func(i int)) {
	k, ok := B.specMap[m.species]
	if !ok || m.index >= len(B.mols[k]) || B.mols[k][m.index] != m {
		panic(ErrForeignMolecule)
	}
	atoms := make([]int, len(m.atoms))
	copy(atoms, m.atoms)
	sort.Sort(sort.Reverse(sort.IntSlice(atoms)))
	for _, a := range atoms {
		if notify != nil {
			notify(a)
		}
		B.removeAtom(a)
	}
	list := B.mols[k]
	last := len(list) - 1
	if m.index != last {
		list[m.index] = list[last]
		list[m.index].index = m.index
	}
	list[last] = nil
	B.mols[k] = list[:last]
	m.atoms = nil
}

func (B *Box) removeAtom(i int) {
	last := B.NAtoms() - 1
	if i < 0 || i > last {
		panic(ErrAtomIndex)
	}
	B.typeCount[B.typeIdx[i]]--
	B.pos.SwapRemove(i)
	if B.vel != nil {
		B.vel.SwapRemove(i)
	}
	if i != last {
		B.types[i] = B.types[last]
		B.typeIdx[i] = B.typeIdx[last]
		B.molOf[i] = B.molOf[last]
		B.slot[i] = B.slot[last]
		B.molOf[i].atoms[B.slot[i]] = i
	}
	B.types = B.types[:last]
	B.typeIdx = B.typeIdx[:last]
	B.molOf = B.molOf[:last]
	B.slot = B.slot[:last]
}

//Scale changes the size of the box by the factor f, moving the center of mass of each
//molecule so the relative positions are kept. The internal geometry of the
//molecules is not changed.
func (B *Box) Scale(f float64) {
	dim := B.Dim()
	com := space.NewVec(dim)
	for _, list := range B.mols {
		for _, m := range list {
			m.CenterOfMass(B, com)
			com.TE(f - 1)
			for _, a := range m.atoms {
				B.pos.VecView(a).PE(com)
			}
		}
	}
	B.boundary.Scale(f)
	for i := 0; i < B.NAtoms(); i++ {
		B.boundary.CentralImage(B.pos.VecView(i))
	}
}
