/*
 * compute.go, part of gomolsim.
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

//Package compute obtains energies, forces and virials for a box, from the
//potentials and the neighbor lists.
//
//Forces follow the convention of the potential package: with dr=rj-ri,
//a pair adds DU/r2*dr to the force on i, and subtracts it from the force
//on j. The virial is the sum over pairs of DU=r*du/dr.
//
//Overlaps are not errors. A configuration with overlapping atoms has an
//infinite energy and callers check it with IsOverlap.
package compute

import (
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/space"
)

//OverlapEnergy is the energy above which a configuration is treated as overlapping.
const OverlapEnergy = 1e100

//IsOverlap returns true if u is the energy of an overlapping configuration.
func IsOverlap(u float64) bool {
	return math.IsNaN(u) || u > OverlapEnergy
}

//Compute is one contribution to the energy of a box.
type Compute interface {
	//ComputeAll returns the total energy of the box, and sets the virial
	//and, if doForces is true, the forces.
	ComputeAll(doForces bool) float64
	//ComputeAtoms returns the energy of all the interactions that involve
	//at least one of the given atoms, each counted once. The virial
	//and forces are not changed.
	ComputeAtoms(atoms []int) float64
	//Virial returns the virial sum found in the last call to ComputeAll.
	Virial() float64
	//Forces returns the forces found in the last call to ComputeAll with
	//doForces set, or nil if the contribution never gives forces.
	Forces() *space.Matrix
}

//Tracker is implemented by the contributions that keep per-atom state, and
//so need to be told when the box changes.
type Tracker interface {
	AtomMoved(i int)
	AtomAdded(i int)
	//AtomRemoving is called before atom i is removed from the box, while
	//the last atom still has its old index.
	AtomRemoving(i int)
	//BoxChanged is called after the boundary of the box changes.
	BoxChanged() error
}

//Manager is the energy of a box together with the operations that change the
//box while keeping all the neighbor structures consistent. The Monte Carlo
//moves work through a Manager.
type Manager interface {
	Compute
	Box() *molsim.Box
	UpdateAtom(i int)
	InsertMolecule(s *molsim.Species, center space.Vec) *molsim.Molecule
	DeleteMolecule(m *molsim.Molecule)
	BoxChanged() error
}

//Options contains options for the computes.
type Options struct {
	cpus  int
	intra bool
}

//DefaultOptions returns the options for a serial compute that skips the
//non-bonded interactions within a molecule.
func DefaultOptions() *Options {
	return &Options{cpus: 1}
}

//Cpus sets the number of goroutines that share the work of ComputeAll, if a
//value is given, and returns the current value.
func (O *Options) Cpus(cpus ...int) int {
	if len(cpus) > 0 && cpus[0] > 0 {
		O.cpus = cpus[0]
	}
	return O.cpus
}

//IntraMolecular sets whether the pair potentials also act between atoms of the
//same molecule, if a value is given, and returns the current value.
func (O *Options) IntraMolecular(intra ...bool) bool {
	if len(intra) > 0 {
		O.intra = intra[0]
	}
	return O.intra
}

//Sum adds several contributions. It is also the Manager for the box, and it
//passes the changes of the box to the contributions that are Trackers.
type Sum struct {
	box    *molsim.Box
	parts  []Compute
	forces *space.Matrix
	virial float64
}

//NewSum returns the sum of the given contributions for box.
func NewSum(box *molsim.Box, parts ...Compute) *Sum {
	return &Sum{box: box, parts: parts, forces: space.Zeros(0, box.Dim())}
}

//Add adds a contribution.
func (S *Sum) Add(p Compute) { S.parts = append(S.parts, p) }

//Parts returns the contributions. The slice must not be modified.
func (S *Sum) Parts() []Compute { return S.parts }

func (S *Sum) Box() *molsim.Box { return S.box }

func (S *Sum) ComputeAll(doForces bool) float64 {
	u := 0.0
	S.virial = 0
	if doForces {
		S.forces.Resize(S.box.NAtoms())
		S.forces.Zero()
	}
	for _, p := range S.parts {
		u += p.ComputeAll(doForces)
		S.virial += p.Virial()
		if !doForces {
			continue
		}
		if f := p.Forces(); f != nil {
			d := S.forces.RawData()
			for k, v := range f.RawData() {
				d[k] += v
			}
		}
	}
	if IsOverlap(u) {
		return math.Inf(1)
	}
	return u
}

func (S *Sum) ComputeAtoms(atoms []int) float64 {
	u := 0.0
	for _, p := range S.parts {
		u += p.ComputeAtoms(atoms)
	}
	if IsOverlap(u) {
		return math.Inf(1)
	}
	return u
}

func (S *Sum) Virial() float64 { return S.virial }

func (S *Sum) Forces() *space.Matrix { return S.forces }

//UpdateAtom must be called after atom i moves.
func (S *Sum) UpdateAtom(i int) {
	for _, p := range S.parts {
		if t, ok := p.(Tracker); ok {
			t.AtomMoved(i)
		}
	}
}

//InsertMolecule adds a molecule of species s at center to the box, and returns it.
func (S *Sum) InsertMolecule(s *molsim.Species, center space.Vec) *molsim.Molecule {
	m := S.box.AddMolecule(s, center)
	for _, a := range m.Atoms() {
		for _, p := range S.parts {
			if t, ok := p.(Tracker); ok {
				t.AtomAdded(a)
			}
		}
	}
	return m
}

//DeleteMolecule removes m from the box.
func (S *Sum) DeleteMolecule(m *molsim.Molecule) {
	S.box.RemoveMolecule(m, func(i int) {
		for _, p := range S.parts {
			if t, ok := p.(Tracker); ok {
				t.AtomRemoving(i)
			}
		}
	})
}

//BoxChanged must be called after the boundary of the box changes.
func (S *Sum) BoxChanged() error {
	for _, p := range S.parts {
		if t, ok := p.(Tracker); ok {
			if err := t.BoxChanged(); err != nil {
				return molsim.ErrDecorate(err, "BoxChanged")
			}
		}
	}
	return nil
}
