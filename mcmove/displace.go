/*
 * displace.go, part of gomolsim.
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

package mcmove

import (
	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/integrator"
	"github.com/rmera/gomolsim/space"
	"golang.org/x/exp/rand"
)

//AtomDisplace moves one random atom by a random amount of up to the step size
//along each axis.
type AtomDisplace struct {
	mgr        compute.Manager
	rng        *rand.Rand
	tracker    *integrator.StepTracker
	atom       []int
	old        space.Vec
	shift      space.Vec
	uOld, uNew float64
}

//NewAtomDisplace returns a displacement move for the atoms of the box of mgr,
//with an initial step of 0.1 that is allowed to grow up to half the box.
func NewAtomDisplace(mgr compute.Manager, rng *rand.Rand) *AtomDisplace {
	dim := mgr.Box().Dim()
	max := space.MinWidth(mgr.Box().Boundary()) / 2
	return &AtomDisplace{
		mgr:     mgr,
		rng:     rng,
		tracker: integrator.NewStepTracker(0.1, 0, max),
		atom:    make([]int, 1),
		old:     space.NewVec(dim),
		shift:   space.NewVec(dim),
	}
}

func (A *AtomDisplace) Name() string { return "atom displacement" }

func (A *AtomDisplace) Tracker() *integrator.StepTracker { return A.tracker }

func (A *AtomDisplace) DoTrial() bool {
	box := A.mgr.Box()
	if box.NAtoms() == 0 {
		return false
	}
	i := A.rng.Intn(box.NAtoms())
	if box.Type(i).RMass() == 0 {
		return false
	}
	A.atom[0] = i
	A.uOld = A.mgr.ComputeAtoms(A.atom)
	checkPrior(A.uOld)
	r := box.Position(i)
	A.old.E(r)
	randomShift(A.rng, A.tracker.Step(), A.shift)
	r.PE(A.shift)
	box.Boundary().CentralImage(r)
	A.mgr.UpdateAtom(i)
	return true
}

func (A *AtomDisplace) Chi(T float64) float64 {
	A.uNew = A.mgr.ComputeAtoms(A.atom)
	return metropolis(A.uOld, A.uNew, T, 1)
}

func (A *AtomDisplace) EnergyChange() float64 { return A.uNew - A.uOld }

func (A *AtomDisplace) Accept() {}

func (A *AtomDisplace) Reject() {
	A.mgr.Box().Position(A.atom[0]).E(A.old)
	A.mgr.UpdateAtom(A.atom[0])
}

//MoleculeDisplace translates one random molecule, rigidly.
type MoleculeDisplace struct {
	mgr        compute.Manager
	rng        *rand.Rand
	species    *molsim.Species
	tracker    *integrator.StepTracker
	mol        *molsim.Molecule
	old        saved
	shift      space.Vec
	uOld, uNew float64
}

//NewMoleculeDisplace returns a translation move for the molecules of species s, or
//for all molecules if s is nil.
func NewMoleculeDisplace(mgr compute.Manager, s *molsim.Species, rng *rand.Rand) *MoleculeDisplace {
	max := space.MinWidth(mgr.Box().Boundary()) / 2
	return &MoleculeDisplace{
		mgr:     mgr,
		rng:     rng,
		species: s,
		tracker: integrator.NewStepTracker(0.1, 0, max),
		shift:   space.NewVec(mgr.Box().Dim()),
	}
}

func (M *MoleculeDisplace) Name() string { return "molecule displacement" }

func (M *MoleculeDisplace) Tracker() *integrator.StepTracker { return M.tracker }

func (M *MoleculeDisplace) DoTrial() bool {
	box := M.mgr.Box()
	M.mol = randomMolecule(box, M.species, M.rng)
	if M.mol == nil {
		return false
	}
	atoms := M.mol.Atoms()
	M.uOld = M.mgr.ComputeAtoms(atoms)
	checkPrior(M.uOld)
	M.old.save(box, atoms)
	randomShift(M.rng, M.tracker.Step(), M.shift)
	for _, a := range atoms {
		r := box.Position(a)
		r.PE(M.shift)
		box.Boundary().CentralImage(r)
		M.mgr.UpdateAtom(a)
	}
	return true
}

func (M *MoleculeDisplace) Chi(T float64) float64 {
	M.uNew = M.mgr.ComputeAtoms(M.mol.Atoms())
	return metropolis(M.uOld, M.uNew, T, 1)
}

func (M *MoleculeDisplace) EnergyChange() float64 { return M.uNew - M.uOld }

func (M *MoleculeDisplace) Accept() {}

func (M *MoleculeDisplace) Reject() { M.old.restore(M.mgr) }

//PairDisplace moves two different random atoms at once, by opposite
//displacements weighted with their masses so the center of mass of the pair does not move.
type PairDisplace struct {
	mgr        compute.Manager
	rng        *rand.Rand
	tracker    *integrator.StepTracker
	atoms      []int
	old        saved
	shift      space.Vec
	uOld, uNew float64
}

func NewPairDisplace(mgr compute.Manager, rng *rand.Rand) *PairDisplace {
	max := space.MinWidth(mgr.Box().Boundary()) / 2
	return &PairDisplace{
		mgr:     mgr,
		rng:     rng,
		tracker: integrator.NewStepTracker(0.1, 0, max),
		atoms:   make([]int, 2),
		shift:   space.NewVec(mgr.Box().Dim()),
	}
}

func (P *PairDisplace) Name() string { return "pair displacement" }

func (P *PairDisplace) Tracker() *integrator.StepTracker { return P.tracker }

func (P *PairDisplace) DoTrial() bool {
	box := P.mgr.Box()
	n := box.NAtoms()
	if n < 2 {
		return false
	}
	i := P.rng.Intn(n)
	j := P.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	mi, mj := box.Mass(i), box.Mass(j)
	if box.Type(i).RMass() == 0 || box.Type(j).RMass() == 0 {
		return false
	}
	P.atoms[0], P.atoms[1] = i, j
	P.uOld = P.mgr.ComputeAtoms(P.atoms)
	checkPrior(P.uOld)
	P.old.save(box, P.atoms)
	randomShift(P.rng, P.tracker.Step(), P.shift)
	ri, rj := box.Position(i), box.Position(j)
	ri.PEa1Tv1(mj/(mi+mj), P.shift)
	rj.PEa1Tv1(-mi/(mi+mj), P.shift)
	box.Boundary().CentralImage(ri)
	box.Boundary().CentralImage(rj)
	P.mgr.UpdateAtom(i)
	P.mgr.UpdateAtom(j)
	return true
}

func (P *PairDisplace) Chi(T float64) float64 {
	P.uNew = P.mgr.ComputeAtoms(P.atoms)
	return metropolis(P.uOld, P.uNew, T, 1)
}

func (P *PairDisplace) EnergyChange() float64 { return P.uNew - P.uOld }

func (P *PairDisplace) Accept() {}

func (P *PairDisplace) Reject() { P.old.restore(P.mgr) }
